package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/ourstory/internal/client/moments"
	"github.com/atinyakov/ourstory/internal/client/prefs"
	"github.com/atinyakov/ourstory/internal/models"
)

// Bundle returns a copy of the local preferences.
func (a *App) Bundle() models.Bundle {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bundle
	b.Playlist = append([]models.SongEntry(nil), b.Playlist...)
	b.Reasons = append([]string(nil), b.Reasons...)
	b.BucketList = append([]models.BucketItem(nil), b.BucketList...)
	return b
}

// editPrefs runs fn on the bundle under the lock and emits EventPrefs when
// it succeeds. fn persists what it changed.
func (a *App) editPrefs(privileged bool, fn func(b *models.Bundle) error) error {
	if privileged {
		if err := a.privileged(); err != nil {
			return err
		}
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	err := fn(&a.bundle)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	a.emit(EventPrefs)
	return nil
}

// AddSong appends a song to the playlist. Both fields are required.
func (a *App) AddSong(title, url string) error {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if title == "" || url == "" {
		return ErrMissingField
	}
	return a.editPrefs(true, func(b *models.Bundle) error {
		b.Playlist = append(b.Playlist, models.SongEntry{URL: url, Title: title})
		prefs.Save(a.cfg.Prefs, prefs.KeyPlaylist, b.Playlist)
		return nil
	})
}

// RemoveSong removes the i-th song.
func (a *App) RemoveSong(i int) error {
	return a.editPrefs(true, func(b *models.Bundle) error {
		if i < 0 || i >= len(b.Playlist) {
			return fmt.Errorf("song %d: %w", i, ErrNotFound)
		}
		b.Playlist = append(b.Playlist[:i:i], b.Playlist[i+1:]...)
		prefs.Save(a.cfg.Prefs, prefs.KeyPlaylist, b.Playlist)
		return nil
	})
}

// AddReason appends a reason.
func (a *App) AddReason(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	return a.editPrefs(true, func(b *models.Bundle) error {
		b.Reasons = append(b.Reasons, text)
		prefs.Save(a.cfg.Prefs, prefs.KeyReasons, b.Reasons)
		return nil
	})
}

// RemoveReason removes the i-th reason.
func (a *App) RemoveReason(i int) error {
	return a.editPrefs(true, func(b *models.Bundle) error {
		if i < 0 || i >= len(b.Reasons) {
			return fmt.Errorf("reason %d: %w", i, ErrNotFound)
		}
		b.Reasons = append(b.Reasons[:i:i], b.Reasons[i+1:]...)
		prefs.Save(a.cfg.Prefs, prefs.KeyReasons, b.Reasons)
		return nil
	})
}

// AddBucketItem appends an open item with a fresh id and returns the id.
func (a *App) AddBucketItem(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmptyText
	}
	var id int64
	err := a.editPrefs(true, func(b *models.Bundle) error {
		id = prefs.NextBucketID(b.BucketList, a.cfg.Now())
		b.BucketList = append(b.BucketList, models.BucketItem{ID: id, Text: text})
		prefs.Save(a.cfg.Prefs, prefs.KeyBucketList, b.BucketList)
		return nil
	})
	return id, err
}

// ToggleBucketItem flips the completed flag. Any identity may do this.
func (a *App) ToggleBucketItem(id int64) error {
	return a.editPrefs(false, func(b *models.Bundle) error {
		for i := range b.BucketList {
			if b.BucketList[i].ID == id {
				b.BucketList[i].Completed = !b.BucketList[i].Completed
				prefs.Save(a.cfg.Prefs, prefs.KeyBucketList, b.BucketList)
				return nil
			}
		}
		return fmt.Errorf("bucket item %d: %w", id, ErrNotFound)
	})
}

// RemoveBucketItem deletes the item with the given id.
func (a *App) RemoveBucketItem(id int64) error {
	return a.editPrefs(true, func(b *models.Bundle) error {
		for i := range b.BucketList {
			if b.BucketList[i].ID == id {
				b.BucketList = append(b.BucketList[:i:i], b.BucketList[i+1:]...)
				prefs.Save(a.cfg.Prefs, prefs.KeyBucketList, b.BucketList)
				return nil
			}
		}
		return fmt.Errorf("bucket item %d: %w", id, ErrNotFound)
	})
}

// SaveTimeCapsule replaces the capsule. The unlock date must be a
// YYYY-MM-DD calendar date.
func (a *App) SaveTimeCapsule(tc models.TimeCapsule) error {
	tc.UnlockDate = strings.TrimSpace(tc.UnlockDate)
	if _, err := time.Parse(prefs.CapsuleDateLayout, tc.UnlockDate); err != nil {
		return fmt.Errorf("unlock date %q: %w", tc.UnlockDate, ErrInvalidDate)
	}
	return a.editPrefs(true, func(b *models.Bundle) error {
		b.TimeCapsule = tc
		prefs.Save(a.cfg.Prefs, prefs.KeyTimeCapsule, b.TimeCapsule)
		return nil
	})
}

// Capsule returns the capsule countdown. Both letters are returned only
// once it has opened.
func (a *App) Capsule() (state moments.CapsuleState, forHer, forHim string, err error) {
	a.mu.Lock()
	tc := a.bundle.TimeCapsule
	a.mu.Unlock()

	state, err = moments.Capsule(tc.UnlockDate, a.cfg.Now())
	if err != nil || !state.Open {
		return state, "", "", err
	}
	return state, tc.MessageForHer, tc.MessageForHim, nil
}
