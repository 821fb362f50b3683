// Package hub pushes full feed snapshots to websocket subscribers.
//
// A single goroutine (Serve) owns the subscriber set. Writers call Notify
// after a successful change; the hub then rebuilds the snapshot for every
// subscriber of that feed and queues it on the subscriber's send buffer.
// Snapshots replace each other, so a slow subscriber that falls behind is
// dropped rather than fed a partial history.
package hub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/atinyakov/ourstory/internal/metrics"
	"github.com/atinyakov/ourstory/internal/models"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// FrameSnapshot is the only frame type sent to subscribers.
const FrameSnapshot = "snapshot"

// Frame is the wire form of one pushed snapshot.
type Frame struct {
	Type  string      `json:"type"`
	Feed  models.Feed `json:"feed"`
	Items any         `json:"items"`
}

// Source produces the current items of a feed.
type Source interface {
	Snapshot(ctx context.Context, feed models.Feed, q models.Query) (any, error)
}

// Hub fans snapshots out to subscribers. It implements suture.Service and
// service.Notifier.
type Hub struct {
	source Source
	log    *zap.Logger

	register   chan *Client
	unregister chan *Client
	wake       chan struct{}
	dirty      map[models.Feed]*atomic.Bool

	stopped  chan struct{}
	stopOnce sync.Once

	clients map[*Client]struct{}
	count   atomic.Int64
}

// New creates a hub reading snapshots from source.
func New(source Source, log *zap.Logger) *Hub {
	return &Hub{
		source:     source,
		log:        log,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		wake:       make(chan struct{}, 1),
		dirty: map[models.Feed]*atomic.Bool{
			models.FeedMessages: new(atomic.Bool),
			models.FeedRecipes:  new(atomic.Bool),
		},
		stopped: make(chan struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Notify marks feed as changed. It never blocks; several notifications
// arriving before the hub wakes up collapse into one snapshot push.
func (h *Hub) Notify(feed models.Feed) {
	flag, ok := h.dirty[feed]
	if !ok {
		return
	}
	flag.Store(true)
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Clients returns the number of registered subscribers.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Serve runs the hub loop until ctx is done, then closes every subscriber.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			n := len(h.clients)
			for c := range h.clients {
				h.drop(c)
			}
			h.stopOnce.Do(func() { close(h.stopped) })
			h.log.Info("snapshot hub stopped", zap.Int("clients_closed", n))
			return ctx.Err()

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			metrics.Subscribers.WithLabelValues(string(c.feed)).Inc()
			h.log.Debug("subscriber connected",
				zap.String("feed", string(c.feed)), zap.Int("total", len(h.clients)))
			h.push(ctx, c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.Debug("subscriber disconnected",
					zap.String("feed", string(c.feed)), zap.Int("total", len(h.clients)))
			}

		case <-h.wake:
			for feed, flag := range h.dirty {
				if flag.Swap(false) {
					h.broadcast(ctx, feed)
				}
			}
		}
	}
}

// String names the service in supervisor events.
func (h *Hub) String() string {
	return "snapshot-hub"
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	h.count.Add(-1)
	metrics.Subscribers.WithLabelValues(string(c.feed)).Dec()
	close(c.send)
}

func (h *Hub) broadcast(ctx context.Context, feed models.Feed) {
	// Subscribers asking for the same window share one encoded frame.
	// A window whose snapshot failed maps to nil and is skipped.
	frames := make(map[int][]byte)
	for c := range h.clients {
		if c.feed != feed {
			continue
		}
		frame, ok := frames[c.limit]
		if !ok {
			var err error
			frame, err = h.encode(ctx, feed, c.limit)
			if err != nil {
				h.log.Error("failed to build snapshot",
					zap.String("feed", string(feed)), zap.Int("limit", c.limit), zap.Error(err))
			}
			frames[c.limit] = frame
		}
		if frame == nil {
			continue
		}
		h.send(c, frame)
	}
}

func (h *Hub) push(ctx context.Context, c *Client) {
	frame, err := h.encode(ctx, c.feed, c.limit)
	if err != nil {
		h.log.Error("failed to build initial snapshot", zap.String("feed", string(c.feed)), zap.Error(err))
		h.drop(c)
		return
	}
	h.send(c, frame)
}

func (h *Hub) send(c *Client, frame []byte) {
	select {
	case c.send <- frame:
		metrics.SnapshotsPushed.WithLabelValues(string(c.feed)).Inc()
	default:
		h.log.Warn("subscriber too slow, dropping", zap.String("feed", string(c.feed)))
		h.drop(c)
	}
}

func (h *Hub) encode(ctx context.Context, feed models.Feed, limit int) ([]byte, error) {
	items, err := h.source.Snapshot(ctx, feed, models.Query{Limit: limit})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: FrameSnapshot, Feed: feed, Items: items})
}
