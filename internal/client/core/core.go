// Package core is the client's synchronization core. It owns the session,
// the live chat and recipe lists, the local preferences and the view
// router, and runs every network call as a detached task so callers never
// block on the remote store.
package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/ourstory/internal/client/prefs"
	"github.com/atinyakov/ourstory/internal/client/session"
	"github.com/atinyakov/ourstory/internal/client/view"
	"github.com/atinyakov/ourstory/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrForbidden is returned for an action that needs a privileged identity.
	ErrForbidden = errors.New("action requires a privileged identity")
	// ErrNotLive is returned when sending while the chat is not subscribed.
	ErrNotLive = errors.New("chat is not subscribed")
	// ErrEmptyText is returned for a message or entry that is blank after trimming.
	ErrEmptyText = errors.New("text is empty")
	// ErrMissingField is returned when a required form field is blank.
	ErrMissingField = errors.New("required field is empty")
	// ErrInvalidDate is returned for a capsule date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrNotFound is returned for an index or id that does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrClosed is returned by every action after Close.
	ErrClosed = errors.New("core is closed")
)

const (
	// DefaultRetryDelay separates resubscription attempts after a failure.
	DefaultRetryDelay = 3 * time.Second
	// DefaultChatWindow is how many recent messages the chat subscription holds.
	DefaultChatWindow = 100
	// CleanupAge is the age after which chat messages are pruned.
	CleanupAge = 24 * time.Hour
)

// Seer stamps seenAt on chat messages.
type Seer interface {
	MarkSeen(ctx context.Context, ids []string, at time.Time) error
}

// IdentitySetter receives the identity every time it changes.
type IdentitySetter interface {
	SetIdentity(id models.Identity)
}

// Alerter surfaces failed user actions.
type Alerter interface {
	Alert(op string, err error)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(op string, err error)

// Alert calls f.
func (f AlertFunc) Alert(op string, err error) { f(op, err) }

// Event tells renderers which part of the state changed.
type Event string

const (
	EventSession    Event = "session"
	EventView       Event = "view"
	EventChat       Event = "chat"
	EventRecipes    Event = "recipes"
	EventConnection Event = "connection"
	EventPrefs      Event = "prefs"
)

// Config wires the core to its collaborators. Messages, Recipes and Prefs
// are required.
type Config struct {
	Messages Remote[models.ChatMessage]
	Recipes  Remote[models.Recipe]
	Seen     Seer
	Identity IdentitySetter
	Prefs    *prefs.Store
	Alerter  Alerter
	Log      *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
	// RetryDelay defaults to DefaultRetryDelay.
	RetryDelay time.Duration
	// ChatWindow defaults to DefaultChatWindow.
	ChatWindow int
}

// App is the client state. All methods are safe for concurrent use.
type App struct {
	cfg     Config
	log     *zap.Logger
	tasks   *zap.Logger
	session *session.Controller
	router  *view.Router

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	chat     *channel[models.ChatMessage]
	recipes  *channel[models.Recipe]
	bundle   models.Bundle
	handlers []func(Event)
}

// New builds the core and loads the local preferences. Nothing is
// subscribed until a login.
func New(cfg Config) *App {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.ChatWindow <= 0 {
		cfg.ChatWindow = DefaultChatWindow
	}
	if cfg.Alerter == nil {
		log := cfg.Log
		cfg.Alerter = AlertFunc(func(op string, err error) {
			log.Error("action failed", zap.String("op", op), zap.Error(err))
		})
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:     cfg,
		log:     cfg.Log,
		tasks:   cfg.Log.Named("core.tasks"),
		session: session.New(cfg.Log.Named("session"), cfg.Now),
		router:  view.New(),
		ctx:     ctx,
		cancel:  cancel,
		chat:    newChannel(models.FeedMessages, EventChat, cfg.Messages, models.Query{Limit: cfg.ChatWindow}),
		recipes: newChannel(models.FeedRecipes, EventRecipes, cfg.Recipes, models.Query{}),
		bundle:  prefs.LoadBundle(cfg.Prefs),
	}
	return a
}

// OnChange registers fn to be called after every state change. fn runs on
// the goroutine that made the change and must not block.
func (a *App) OnChange(fn func(Event)) {
	a.mu.Lock()
	a.handlers = append(a.handlers, fn)
	a.mu.Unlock()
}

func (a *App) emit(e Event) {
	a.mu.Lock()
	handlers := append([]func(Event){}, a.handlers...)
	a.mu.Unlock()
	for _, fn := range handlers {
		fn(e)
	}
}

// Login authenticates through the given entrance. A privileged login
// starts the chat subscription; a guest login stops it.
func (a *App) Login(kind session.Kind, secret string) (models.Identity, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return models.Guest, ErrClosed
	}
	id, err := a.session.Login(kind, secret)
	if err != nil {
		a.mu.Unlock()
		a.emit(EventSession)
		return id, err
	}
	if a.cfg.Identity != nil {
		a.cfg.Identity.SetIdentity(id)
	}
	if id.Privileged() {
		a.chat.start(a, a.cleanup)
	} else {
		a.chat.stop()
		a.router.SetAdmin(false)
	}
	a.mu.Unlock()
	a.emit(EventSession)
	return id, nil
}

// Logout tears down every subscription and returns to the entrance.
func (a *App) Logout() {
	a.mu.Lock()
	a.chat.stop()
	a.recipes.stop()
	a.session.Logout()
	a.router.Reset()
	if a.cfg.Identity != nil {
		a.cfg.Identity.SetIdentity(models.Guest)
	}
	a.mu.Unlock()
	a.emit(EventSession)
}

// Identity returns the current identity and whether anyone is logged in.
func (a *App) Identity() (models.Identity, bool) {
	return a.session.Identity()
}

// LoginErrorVisible reports whether the failed-login indicator is on.
func (a *App) LoginErrorVisible() bool {
	return a.session.ErrorVisible(a.cfg.Now())
}

// Navigate switches the current view. Entering recipes subscribes to the
// recipe feed and leaving it unsubscribes.
func (a *App) Navigate(v view.View) {
	a.mu.Lock()
	prev := a.router.Navigate(v)
	cur := a.router.Current()
	if cur == view.Recipes && prev != view.Recipes {
		a.recipes.start(a, nil)
	}
	if prev == view.Recipes && cur != view.Recipes {
		a.recipes.stop()
	}
	a.mu.Unlock()
	a.emit(EventView)
}

// View returns the current view.
func (a *App) View() view.View {
	return a.router.Current()
}

// Router exposes the overlay flags.
func (a *App) Router() *view.Router {
	return a.router
}

// OpenAdmin opens the admin overlay for a privileged identity.
func (a *App) OpenAdmin() error {
	if err := a.privileged(); err != nil {
		return err
	}
	a.router.SetAdmin(true)
	a.emit(EventView)
	return nil
}

// CloseAdmin closes the admin overlay.
func (a *App) CloseAdmin() {
	a.router.SetAdmin(false)
	a.emit(EventView)
}

// Close unsubscribes everything and waits for detached tasks to finish.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.chat.stop()
	a.recipes.stop()
	a.mu.Unlock()

	a.cancel()
	a.wg.Wait()
}

func (a *App) privileged() error {
	id, _ := a.session.Identity()
	if !id.Privileged() {
		return ErrForbidden
	}
	return nil
}

// goTask runs fn detached. The caller must hold a.mu or be a tracked task
// itself. Failures are written to the task log only.
func (a *App) goTask(name string, fn func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := fn(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.tasks.Warn("task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// spawn starts a detached task unless the core is closed.
func (a *App) spawn(name string, fn func(ctx context.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	a.goTask(name, fn)
	return nil
}
