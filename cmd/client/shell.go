package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/ourstory/internal/client/core"
	"github.com/atinyakov/ourstory/internal/client/moments"
	"github.com/atinyakov/ourstory/internal/client/player"
	"github.com/atinyakov/ourstory/internal/client/session"
	"github.com/atinyakov/ourstory/internal/client/view"
	"github.com/atinyakov/ourstory/internal/models"
)

const helpText = `Komutlar:
  login guest | login couple     giriş yap
  logout                         çıkış yap
  status                         oturum ve bağlantı durumu
  view home|recipes|chat         sayfa değiştir
  widget                         sohbet penceresini aç/kapat
  chat                           mesajları listele
  send <metin>                   mesaj gönder
  seen                           gelen mesajları okundu işaretle
  recipes [kategori] [arama]     tarifleri listele
  recipe add | recipe rm <id>    tarif ekle / sil
  timeline | counter | capsule   anılar
  reasons | bucket               listeler
  bucket toggle <id>             hayali tamamla
  play | next | prev | mute      müzik çalar
  admin                          yönetim paneli komutları
  exit                           çık`

const adminHelp = `Yönetim:
  song add | song rm <n>
  reason add <metin> | reason rm <n>
  bucket add <metin> | bucket rm <id>
  capsule set
  clear                          tüm sohbeti sil
  admin close`

// syncWriter serializes output from alerts and change notices with the
// prompt loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// consoleEmbed stands in for the video embed and prints what it is told.
type consoleEmbed struct {
	out io.Writer
}

func (e consoleEmbed) Load(id string) { fmt.Fprintf(e.out, "♪ yüklendi: %s\n", id) }
func (e consoleEmbed) Play()          { fmt.Fprintln(e.out, "♪ çalıyor") }
func (e consoleEmbed) Pause()         { fmt.Fprintln(e.out, "♪ duraklatıldı") }
func (e consoleEmbed) Mute()          { fmt.Fprintln(e.out, "♪ sessiz") }
func (e consoleEmbed) Unmute()        { fmt.Fprintln(e.out, "♪ ses açık") }
func (e consoleEmbed) SetVolume(int)  {}
func (e consoleEmbed) Seek(float64)   {}

type shell struct {
	app        *core.App
	player     *player.Player
	in         *bufio.Reader
	out        io.Writer
	readSecret func(prompt string) (string, error)
	now        func() time.Time
}

func newShell(app *core.App, in *bufio.Reader, out io.Writer, readSecret func(string) (string, error)) *shell {
	s := &shell{
		app:        app,
		in:         in,
		out:        out,
		readSecret: readSecret,
		now:        time.Now,
	}
	s.player = player.New(consoleEmbed{out: out}, app.Bundle().Playlist)
	s.player.OnReady()
	app.OnChange(func(e core.Event) {
		switch e {
		case core.EventPrefs:
			s.player.SetPlaylist(app.Bundle().Playlist)
		case core.EventConnection:
			if app.ConnectionLost() {
				fmt.Fprintln(out, "! bağlantı koptu, yeniden deneniyor")
			} else {
				fmt.Fprintln(out, "bağlantı geri geldi")
			}
		}
	})
	return s
}

// run reads commands until exit or end of input.
func (s *shell) run() {
	for {
		line, err := readLine(s.in, s.out, s.promptText())
		if err != nil {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Görüşürüz")
			return
		}
		if err := s.exec(args, line); err != nil {
			fmt.Fprintf(s.out, "hata: %v\n", err)
		}
	}
}

func (s *shell) promptText() string {
	id, ok := s.app.Identity()
	if !ok {
		return "bizim-hikayemiz> "
	}
	return fmt.Sprintf("%s@%s> ", id, s.app.View())
}

var errUsage = errors.New("kullanım hatası, 'help' yazın")

func (s *shell) exec(args []string, line string) error {
	if args[0] == "help" {
		fmt.Fprintln(s.out, helpText)
		return nil
	}
	if _, ok := s.app.Identity(); !ok && args[0] != "login" {
		return errors.New("önce giriş yapın: login guest | login couple")
	}

	switch args[0] {
	case "login":
		return s.login(args)
	case "logout":
		s.app.Logout()
		return nil
	case "status":
		s.status()
		return nil
	case "view":
		if len(args) != 2 || !view.View(args[1]).Valid() {
			return errUsage
		}
		s.app.Navigate(view.View(args[1]))
		return nil
	case "widget":
		s.app.Router().ToggleChatWidget()
		fmt.Fprintf(s.out, "sohbet penceresi açık: %v\n", s.app.Router().ChatWidget())
		return nil
	case "chat":
		s.printChat()
		return nil
	case "send":
		return s.app.SendMessage(restAfter(line, 1))
	case "seen":
		return s.app.MarkSeen()
	case "recipes":
		s.printRecipes(args[1:])
		return nil
	case "recipe":
		return s.recipe(args)
	case "timeline":
		s.printTimeline()
		return nil
	case "counter":
		return s.printCounter()
	case "capsule":
		if len(args) == 2 && args[1] == "set" {
			return s.saveCapsule()
		}
		return s.printCapsule()
	case "reasons":
		s.printReasons()
		return nil
	case "reason":
		return s.reason(args, line)
	case "bucket":
		return s.bucket(args, line)
	case "song":
		return s.song(args)
	case "play":
		s.player.TogglePlay()
		s.printSong()
		return nil
	case "next":
		s.player.Next()
		s.printSong()
		return nil
	case "prev":
		s.player.Prev()
		s.printSong()
		return nil
	case "mute":
		s.player.ToggleMute()
		fmt.Fprintf(s.out, "sessiz: %v\n", s.player.Muted())
		return nil
	case "admin":
		if len(args) == 2 && args[1] == "close" {
			s.app.CloseAdmin()
			return nil
		}
		if err := s.app.OpenAdmin(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, adminHelp)
		return nil
	case "clear":
		return s.app.ClearChat()
	}
	return fmt.Errorf("bilinmeyen komut %q", args[0])
}

func (s *shell) login(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	kind := session.Kind(args[1])
	secret := ""
	if kind == session.KindCouple {
		var err error
		if secret, err = s.readSecret("Şifre: "); err != nil {
			return err
		}
	}
	id, err := s.app.Login(kind, secret)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Hoş geldin, %s\n", id)
	return nil
}

func (s *shell) status() {
	id, _ := s.app.Identity()
	fmt.Fprintln(s.out, renderTable(
		[]string{"alan", "değer"},
		[][]string{
			{"kimlik", string(id)},
			{"sayfa", string(s.app.View())},
			{"yönetim", strconv.FormatBool(s.app.Router().Admin())},
			{"sohbet", s.app.ChatState().String()},
			{"tarifler", s.app.RecipesState().String()},
			{"bağlantı koptu", strconv.FormatBool(s.app.ConnectionLost())},
		},
	))
}

func (s *shell) printChat() {
	rows := [][]string{}
	for _, m := range s.app.Chat() {
		seen := ""
		if m.SeenAt != nil {
			seen = "✓✓"
		}
		rows = append(rows, []string{m.Timestamp.Local().Format("02.01 15:04"), string(m.Sender), m.Text, seen})
	}
	fmt.Fprintln(s.out, renderTable([]string{"zaman", "kim", "mesaj", "görüldü"}, rows))
}

func (s *shell) printRecipes(args []string) {
	category := core.CategoryAll
	if len(args) > 0 {
		category = models.Category(args[0])
		args = args[1:]
	}
	rows := [][]string{}
	for _, r := range s.app.Recipes(category, strings.Join(args, " ")) {
		rows = append(rows, []string{r.ID, r.Title, string(r.Category), string(r.Difficulty), r.Time})
	}
	fmt.Fprintln(s.out, renderTable([]string{"id", "tarif", "kategori", "zorluk", "süre"}, rows))
}

func (s *shell) recipe(args []string) error {
	if len(args) == 3 && args[1] == "rm" {
		return s.app.DeleteRecipe(args[2])
	}
	if len(args) != 2 || args[1] != "add" {
		return errUsage
	}
	var d core.RecipeDraft
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Başlık: ", &d.Title},
		{"Açıklama: ", &d.Description},
		{"Görsel URL: ", &d.Image},
		{"Süre: ", &d.Time},
	}
	for _, f := range fields {
		v, err := readLine(s.in, s.out, f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	category, err := readLine(s.in, s.out, "Kategori (main/dessert/snack/breakfast): ")
	if err != nil {
		return err
	}
	d.Category = models.Category(category)
	difficulty, err := readLine(s.in, s.out, "Zorluk (easy/medium/hard): ")
	if err != nil {
		return err
	}
	d.Difficulty = models.Difficulty(difficulty)
	if d.Ingredients, err = readMultiline(s.in, s.out, "Malzemeler"); err != nil {
		return err
	}
	if d.Steps, err = readMultiline(s.in, s.out, "Adımlar"); err != nil {
		return err
	}
	return s.app.AddRecipe(d)
}

func (s *shell) printTimeline() {
	rows := [][]string{}
	for _, e := range moments.Timeline(s.now()) {
		rows = append(rows, []string{e.Label, e.Title, e.Description})
	}
	fmt.Fprintln(s.out, renderTable([]string{"tarih", "olay", "açıklama"}, rows))
}

func (s *shell) printCounter() error {
	e, err := moments.CounterSince(moments.CounterStart, s.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d yıl %d ay %d gün %d saat %d dakika %d saniye\n",
		e.Years, e.Months, e.Days, e.Hours, e.Minutes, e.Seconds)
	return nil
}

func (s *shell) printCapsule() error {
	state, forHer, forHim, err := s.app.Capsule()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, state.Label)
	if state.Open {
		fmt.Fprintln(s.out, renderTable([]string{"mektup", "metin"}, [][]string{
			{"Ona", forHer},
			{"Bana", forHim},
		}))
	}
	return nil
}

func (s *shell) saveCapsule() error {
	var tc models.TimeCapsule
	var err error
	if tc.UnlockDate, err = readLine(s.in, s.out, "Açılış tarihi (YYYY-MM-DD): "); err != nil {
		return err
	}
	if tc.MessageForHer, err = readMultiline(s.in, s.out, "Onun için mektup"); err != nil {
		return err
	}
	if tc.MessageForHim, err = readMultiline(s.in, s.out, "Benim için mektup"); err != nil {
		return err
	}
	return s.app.SaveTimeCapsule(tc)
}

func (s *shell) printReasons() {
	rows := [][]string{}
	for i, r := range s.app.Bundle().Reasons {
		rows = append(rows, []string{strconv.Itoa(i), r})
	}
	fmt.Fprintln(s.out, renderTable([]string{"#", "neden"}, rows))
}

func (s *shell) reason(args []string, line string) error {
	if len(args) < 2 {
		return errUsage
	}
	switch args[1] {
	case "add":
		return s.app.AddReason(restAfter(line, 2))
	case "rm":
		i, err := intArg(args, 2)
		if err != nil {
			return err
		}
		return s.app.RemoveReason(i)
	}
	return errUsage
}

func (s *shell) bucket(args []string, line string) error {
	if len(args) == 1 {
		rows := [][]string{}
		for _, it := range s.app.Bundle().BucketList {
			done := ""
			if it.Completed {
				done = "✓"
			}
			rows = append(rows, []string{strconv.FormatInt(it.ID, 10), it.Text, done})
		}
		fmt.Fprintln(s.out, renderTable([]string{"id", "hayal", "tamam"}, rows))
		return nil
	}
	switch args[1] {
	case "add":
		id, err := s.app.AddBucketItem(restAfter(line, 2))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "eklendi: %d\n", id)
		return nil
	case "toggle", "rm":
		if len(args) != 3 {
			return errUsage
		}
		id, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return errUsage
		}
		if args[1] == "toggle" {
			return s.app.ToggleBucketItem(id)
		}
		return s.app.RemoveBucketItem(id)
	}
	return errUsage
}

func (s *shell) song(args []string) error {
	if len(args) < 2 {
		rows := [][]string{}
		for i, song := range s.app.Bundle().Playlist {
			rows = append(rows, []string{strconv.Itoa(i), song.Title, song.URL})
		}
		fmt.Fprintln(s.out, renderTable([]string{"#", "şarkı", "url"}, rows))
		return nil
	}
	switch args[1] {
	case "add":
		title, err := readLine(s.in, s.out, "Şarkı adı: ")
		if err != nil {
			return err
		}
		url, err := readLine(s.in, s.out, "YouTube URL: ")
		if err != nil {
			return err
		}
		if player.YouTubeID(url) == "" {
			fmt.Fprintln(s.out, "uyarı: YouTube bağlantısı tanınmadı")
		}
		return s.app.AddSong(title, url)
	case "rm":
		i, err := intArg(args, 2)
		if err != nil {
			return err
		}
		return s.app.RemoveSong(i)
	}
	return errUsage
}

func (s *shell) printSong() {
	song, i, ok := s.player.Current()
	if !ok {
		fmt.Fprintln(s.out, "çalma listesi boş")
		return
	}
	state := "duraklatıldı"
	if s.player.Playing() {
		state = "çalıyor"
	}
	fmt.Fprintf(s.out, "%d. %s (%s)\n", i+1, song.Title, state)
}

// restAfter returns line without its first n fields.
func restAfter(line string, n int) string {
	fields := strings.Fields(line)
	if len(fields) <= n {
		return ""
	}
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimSpace(rest)
		rest = rest[len(fields[i]):]
	}
	return strings.TrimSpace(rest)
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errUsage
	}
	return n, nil
}
