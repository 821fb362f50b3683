package core

import (
	"context"
	"errors"
	"time"

	"github.com/atinyakov/ourstory/internal/client/feed"
	"github.com/atinyakov/ourstory/internal/models"
	"go.uber.org/zap"
)

// State is the lifecycle of one feed subscription.
type State int

const (
	Unsubscribed State = iota
	Subscribing
	Live
)

func (s State) String() string {
	switch s {
	case Subscribing:
		return "subscribing"
	case Live:
		return "live"
	default:
		return "unsubscribed"
	}
}

// Subscription is a live view of a feed. Every snapshot replaces the
// previous one.
type Subscription[T any] interface {
	Snapshots() <-chan []T
	Err() error
	Unsubscribe()
}

// Remote is one feed of the remote store.
type Remote[T any] interface {
	Query(ctx context.Context, q models.Query) ([]T, error)
	Append(ctx context.Context, item T) (string, error)
	DeleteMany(ctx context.Context, ids []string) error
	Subscribe(ctx context.Context, q models.Query) (Subscription[T], error)
}

type feedRemote[T any] struct {
	*feed.Feed[T]
}

// FromFeed adapts a feed client handle to Remote.
func FromFeed[T any](f *feed.Feed[T]) Remote[T] {
	return feedRemote[T]{f}
}

func (r feedRemote[T]) Subscribe(ctx context.Context, q models.Query) (Subscription[T], error) {
	s, err := r.Feed.Subscribe(ctx, q)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var errStreamClosed = errors.New("subscription closed by server")

// channel tracks one feed. Its fields are guarded by App.mu.
type channel[T any] struct {
	name   models.Feed
	event  Event
	remote Remote[T]
	query  models.Query

	state  State
	items  []T
	lost   bool
	gen    uint64
	cancel context.CancelFunc
}

func newChannel[T any](name models.Feed, event Event, remote Remote[T], q models.Query) *channel[T] {
	return &channel[T]{name: name, event: event, remote: remote, query: q}
}

// start moves an unsubscribed channel to Subscribing and launches its
// follow loop. onLive runs after each transition into Live. a.mu is held.
func (c *channel[T]) start(a *App, onLive func()) {
	if a.closed || c.state != Unsubscribed {
		return
	}
	c.state = Subscribing
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(a.ctx)
	c.cancel = cancel
	a.goTask("subscribe "+string(c.name), func(context.Context) error {
		c.run(ctx, a, gen, onLive)
		return nil
	})
}

// stop cancels the follow loop, which unsubscribes exactly once. a.mu is held.
func (c *channel[T]) stop() {
	if c.state == Unsubscribed {
		return
	}
	c.state = Unsubscribed
	c.items = nil
	c.lost = false
	c.gen++
	c.cancel()
	c.cancel = nil
}

func (c *channel[T]) snapshot() []T {
	return append([]T(nil), c.items...)
}

func (c *channel[T]) run(ctx context.Context, a *App, gen uint64, onLive func()) {
	for {
		err := c.follow(ctx, a, gen, onLive)
		if ctx.Err() != nil {
			return
		}

		a.mu.Lock()
		if c.gen != gen {
			a.mu.Unlock()
			return
		}
		c.state = Subscribing
		c.lost = true
		a.mu.Unlock()

		a.log.Warn("subscription lost, retrying",
			zap.String("feed", string(c.name)),
			zap.Duration("delay", a.cfg.RetryDelay),
			zap.Error(err))
		a.emit(EventConnection)

		t := time.NewTimer(a.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (c *channel[T]) follow(ctx context.Context, a *App, gen uint64, onLive func()) error {
	sub, err := c.remote.Subscribe(ctx, c.query)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case items, ok := <-sub.Snapshots():
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}
				return errStreamClosed
			}

			a.mu.Lock()
			if c.gen != gen {
				a.mu.Unlock()
				return context.Canceled
			}
			entered := c.state != Live
			restored := c.lost
			c.state = Live
			c.lost = false
			c.items = items
			a.mu.Unlock()

			if restored {
				a.log.Info("subscription restored", zap.String("feed", string(c.name)))
				a.emit(EventConnection)
			}
			a.emit(c.event)
			if entered && onLive != nil {
				onLive()
			}
		}
	}
}

// ChatState returns the chat subscription state.
func (a *App) ChatState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chat.state
}

// RecipesState returns the recipe subscription state.
func (a *App) RecipesState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recipes.state
}

// ConnectionLost reports whether any subscription is waiting to be
// re-established after a failure.
func (a *App) ConnectionLost() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chat.lost || a.recipes.lost
}
