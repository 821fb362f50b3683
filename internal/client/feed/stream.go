package feed

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// readWait is how long the stream waits for any frame, including the
	// server's pings, before treating the connection as lost.
	readWait  = 70 * time.Second
	writeWait = 5 * time.Second
)

// Stream is a live subscription to one feed.
type Stream[T any] struct {
	conn      *websocket.Conn
	snapshots chan []T
	closing   chan struct{}
	once      sync.Once

	mu  sync.Mutex
	err error
}

type frame[T any] struct {
	Type  string `json:"type"`
	Items []T    `json:"items"`
}

func newStream[T any](conn *websocket.Conn) *Stream[T] {
	s := &Stream[T]{
		conn:      conn,
		snapshots: make(chan []T, 1),
		closing:   make(chan struct{}),
	}
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	go s.read()
	return s
}

// Snapshots delivers full snapshots. Only the latest undelivered snapshot
// is kept. The channel is closed when the stream ends; Err then tells why.
func (s *Stream[T]) Snapshots() <-chan []T {
	return s.snapshots
}

// Err returns the error that ended the stream, or nil while it is live or
// after Unsubscribe.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe closes the subscription. It is safe to call more than once.
func (s *Stream[T]) Unsubscribe() {
	s.once.Do(func() {
		close(s.closing)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		_ = s.conn.Close()
	})
}

func (s *Stream[T]) read() {
	defer close(s.snapshots)
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(readWait))
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		var f frame[T]
		if err := json.Unmarshal(data, &f); err != nil {
			s.fail(fmt.Errorf("decode snapshot: %w", err))
			_ = s.conn.Close()
			return
		}
		if f.Type != "snapshot" {
			continue
		}
		if f.Items == nil {
			f.Items = []T{}
		}
		// Drop a snapshot the consumer has not picked up yet.
		select {
		case <-s.snapshots:
		default:
		}
		s.snapshots <- f.Items
	}
}

func (s *Stream[T]) fail(err error) {
	select {
	case <-s.closing:
		return
	default:
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
