// Package server assembles the long-running pieces of the feed server under
// one suture supervisor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// NewSupervisor returns the root supervisor with supervisor events routed
// to log.
func NewSupervisor(log *zap.Logger) *suture.Supervisor {
	return suture.New("ourstory", suture.Spec{
		EventHook:        EventHook(log),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
}

// EventHook converts suture events into zap log lines.
func EventHook(log *zap.Logger) suture.EventHook {
	return func(e suture.Event) {
		fields := make([]zap.Field, 0, len(e.Map()))
		for k, v := range e.Map() {
			fields = append(fields, zap.Any(k, v))
		}
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate, suture.EventTypeBackoff:
			log.Warn(e.String(), fields...)
		default:
			log.Info(e.String(), fields...)
		}
	}
}

// HTTPService runs an http.Server as a suture.Service. When CertFile and
// KeyFile are both set the server speaks TLS.
type HTTPService struct {
	Server          *http.Server
	CertFile        string
	KeyFile         string
	ShutdownTimeout time.Duration
	Log             *zap.Logger
}

// Serve starts the listener and shuts it down gracefully when ctx ends.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.CertFile != "" && s.KeyFile != "" {
			s.Log.Info("starting HTTPS server", zap.String("addr", s.Server.Addr))
			err = s.Server.ListenAndServeTLS(s.CertFile, s.KeyFile)
		} else {
			s.Log.Info("starting HTTP server", zap.String("addr", s.Server.Addr))
			err = s.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		timeout := s.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return ctx.Err()
	}
}

// String names the service in supervisor events.
func (s *HTTPService) String() string {
	return "http-server"
}
