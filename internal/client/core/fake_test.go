package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atinyakov/ourstory/internal/client/prefs"
	"github.com/atinyakov/ourstory/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSub[T any] struct {
	ch     chan []T
	once   sync.Once
	mu     sync.Mutex
	err    error
	unsubs atomic.Int32
}

func newFakeSub[T any]() *fakeSub[T] {
	return &fakeSub[T]{ch: make(chan []T, 1)}
}

func (s *fakeSub[T]) Snapshots() <-chan []T { return s.ch }

func (s *fakeSub[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeSub[T]) Unsubscribe() {
	s.unsubs.Add(1)
	s.once.Do(func() { close(s.ch) })
}

func (s *fakeSub[T]) push(items ...T) {
	s.ch <- items
}

// fail ends the stream the way a dropped connection does.
func (s *fakeSub[T]) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}

type fakeRemote[T any] struct {
	mu         sync.Mutex
	subs       []*fakeSub[T]
	subQueries []models.Query
	failSubs   int
	queryItems []T
	queryErr   error
	queries    []models.Query
	appended   []T
	appendErr  error
	deleted    [][]string
	deleteErr  error
	subscribed chan *fakeSub[T]
}

func newFakeRemote[T any]() *fakeRemote[T] {
	return &fakeRemote[T]{subscribed: make(chan *fakeSub[T], 16)}
}

func (r *fakeRemote[T]) Query(_ context.Context, q models.Query) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	return append([]T(nil), r.queryItems...), r.queryErr
}

func (r *fakeRemote[T]) Append(_ context.Context, item T) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return "", r.appendErr
	}
	r.appended = append(r.appended, item)
	return "id", nil
}

func (r *fakeRemote[T]) DeleteMany(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, ids)
	return nil
}

func (r *fakeRemote[T]) Subscribe(_ context.Context, q models.Query) (Subscription[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subQueries = append(r.subQueries, q)
	if r.failSubs > 0 {
		r.failSubs--
		return nil, errors.New("dial refused")
	}
	s := newFakeSub[T]()
	r.subs = append(r.subs, s)
	r.subscribed <- s
	return s, nil
}

func (r *fakeRemote[T]) snapshot() (queries []models.Query, appended []T, deleted [][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Query(nil), r.queries...),
		append([]T(nil), r.appended...),
		append([][]string(nil), r.deleted...)
}

func (r *fakeRemote[T]) nextSub(t *testing.T) *fakeSub[T] {
	t.Helper()
	select {
	case s := <-r.subscribed:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no subscription within 2s")
		return nil
	}
}

type fakeSeer struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (s *fakeSeer) MarkSeen(_ context.Context, ids []string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ids)
	return s.err
}

type alert struct {
	op  string
	err error
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alert
}

func (r *recordingAlerter) Alert(op string, err error) {
	r.mu.Lock()
	r.alerts = append(r.alerts, alert{op, err})
	r.mu.Unlock()
}

func (r *recordingAlerter) all() []alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]alert(nil), r.alerts...)
}

type recordingIdentity struct {
	mu  sync.Mutex
	ids []models.Identity
}

func (r *recordingIdentity) SetIdentity(id models.Identity) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

type fixture struct {
	app      *App
	messages *fakeRemote[models.ChatMessage]
	recipes  *fakeRemote[models.Recipe]
	seen     *fakeSeer
	alerts   *recordingAlerter
	identity *recordingIdentity
	store    *prefs.Store
	now      time.Time
}

func newFixture(t *testing.T, log *zap.Logger) *fixture {
	t.Helper()
	if log == nil {
		log = zap.NewNop()
	}
	f := &fixture{
		messages: newFakeRemote[models.ChatMessage](),
		recipes:  newFakeRemote[models.Recipe](),
		seen:     &fakeSeer{},
		alerts:   &recordingAlerter{},
		identity: &recordingIdentity{},
		store:    prefs.New(prefs.NewFileKV(t.TempDir()+"/prefs.json"), log),
		now:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.app = New(Config{
		Messages:   f.messages,
		Recipes:    f.recipes,
		Seen:       f.seen,
		Identity:   f.identity,
		Prefs:      f.store,
		Alerter:    f.alerts,
		Log:        log,
		Now:        func() time.Time { return f.now },
		RetryDelay: 10 * time.Millisecond,
	})
	t.Cleanup(f.app.Close)
	return f
}

// loginLive logs in as her and delivers an initial chat snapshot.
func (f *fixture) loginLive(t *testing.T, items ...models.ChatMessage) *fakeSub[models.ChatMessage] {
	t.Helper()
	_, err := f.app.Login("couple", "1071")
	require.NoError(t, err)
	sub := f.messages.nextSub(t)
	sub.push(items...)
	require.Eventually(t, func() bool { return f.app.ChatState() == Live }, 2*time.Second, 5*time.Millisecond)
	return sub
}
