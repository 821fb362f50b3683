package player

import (
	"sync"

	"github.com/atinyakov/ourstory/internal/models"
)

// InitialVolume is applied once the embed reports ready.
const InitialVolume = 50

// Embed is the underlying video player.
type Embed interface {
	Load(videoID string)
	Play()
	Pause()
	Mute()
	Unmute()
	SetVolume(v int)
	Seek(seconds float64)
}

// State is a playback state reported by the embed.
type State int

const (
	StateUnstarted State = iota
	StatePlaying
	StatePaused
	StateEnded
)

// Player keeps the current song, play and mute flags in step with an Embed.
type Player struct {
	mu       sync.Mutex
	embed    Embed
	playlist []models.SongEntry
	index    int
	playing  bool
	muted    bool
}

// New returns a player over playlist and loads its first song.
func New(embed Embed, playlist []models.SongEntry) *Player {
	p := &Player{embed: embed, playlist: playlist}
	p.load()
	return p
}

// OnReady is called by the embed once it can accept commands.
func (p *Player) OnReady() {
	p.embed.SetVolume(InitialVolume)
}

// OnStateChange tracks play/pause and advances when a song ends.
func (p *Player) OnStateChange(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch s {
	case StatePlaying:
		p.playing = true
	case StatePaused:
		p.playing = false
	case StateEnded:
		p.next()
	}
}

// OnError skips to the next song.
func (p *Player) OnError(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next()
}

// Next advances with wrap-around. A single song restarts instead.
func (p *Player) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next()
}

// Prev steps back with wrap-around. A single song rewinds instead.
func (p *Player) Prev() {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.playlist)
	if n <= 1 {
		p.embed.Seek(0)
		return
	}
	p.index = (p.index - 1 + n) % n
	p.load()
}

// Select jumps to song i. Out-of-range indexes are ignored.
func (p *Player) Select(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.playlist) {
		return
	}
	p.index = i
	p.load()
}

// TogglePlay pauses while playing and plays otherwise. The playing flag
// follows the embed's state reports, not this call.
func (p *Player) TogglePlay() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		p.embed.Pause()
	} else {
		p.embed.Play()
	}
}

// ToggleMute flips the mute flag.
func (p *Player) ToggleMute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.muted {
		p.embed.Unmute()
	} else {
		p.embed.Mute()
	}
	p.muted = !p.muted
}

// SetPlaylist replaces the playlist, resetting the index to 0 when it no
// longer fits, and reloads the current song.
func (p *Player) SetPlaylist(playlist []models.SongEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playlist = playlist
	if p.index >= len(playlist) {
		p.index = 0
	}
	p.load()
}

// Current returns the current song and its index; ok is false for an empty
// playlist.
func (p *Player) Current() (song models.SongEntry, index int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.playlist) == 0 {
		return models.SongEntry{}, 0, false
	}
	return p.playlist[p.index], p.index, true
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func (p *Player) next() {
	n := len(p.playlist)
	if n <= 1 {
		p.embed.Seek(0)
		p.embed.Play()
		return
	}
	p.index = (p.index + 1) % n
	p.load()
}

func (p *Player) load() {
	if len(p.playlist) == 0 {
		return
	}
	if id := YouTubeID(p.playlist[p.index].URL); id != "" {
		p.embed.Load(id)
	}
}
