package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/ourstory/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// dummyHandler records whether it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
	status int
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	if d.status != 0 {
		w.WriteHeader(d.status)
	}
	_, _ = w.Write([]byte("ok"))
}

func TestWithIdentity_KnownIdentity(t *testing.T) {
	dummy := &dummyHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	req.Header.Set(IdentityHeader, "her")

	WithIdentity(dummy).ServeHTTP(httptest.NewRecorder(), req)

	if !dummy.called {
		t.Fatal("expected next handler to be called")
	}
	if got := IdentityFromContext(dummy.ctx); got != models.PersonA {
		t.Errorf("identity = %q; want %q", got, models.PersonA)
	}
}

func TestWithIdentity_UnknownFallsBackToGuest(t *testing.T) {
	for _, header := range []string{"", "admin", "guest"} {
		dummy := &dummyHandler{}
		req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
		if header != "" {
			req.Header.Set(IdentityHeader, header)
		}
		rec := httptest.NewRecorder()

		WithIdentity(dummy).ServeHTTP(rec, req)

		if !dummy.called || rec.Code != http.StatusOK {
			t.Errorf("header %q: request must pass through, got %d", header, rec.Code)
		}
		if got := IdentityFromContext(dummy.ctx); got != models.Guest {
			t.Errorf("header %q: identity = %q; want guest", header, got)
		}
	}
}

func TestIdentityFromContext_Empty(t *testing.T) {
	if got := IdentityFromContext(context.Background()); got != models.Guest {
		t.Errorf("identity = %q; want guest", got)
	}
}

func TestWithRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dummy := &dummyHandler{status: http.StatusCreated}
	h := WithIdentity(WithRequestLogging(zap.New(core))(dummy))

	req := httptest.NewRequest(http.MethodPost, "/api/recipes", nil)
	req.Header.Set(IdentityHeader, "him")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != http.MethodPost || fields["path"] != "/api/recipes" {
		t.Errorf("unexpected request fields: %v", fields)
	}
	if fields["status"] != int64(http.StatusCreated) {
		t.Errorf("status = %v; want 201", fields["status"])
	}
	if fields["bytes"] != int64(2) {
		t.Errorf("bytes = %v; want 2", fields["bytes"])
	}
	if fields["identity"] != "him" {
		t.Errorf("identity = %v; want him", fields["identity"])
	}
}
