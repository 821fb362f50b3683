// Package session gates the site behind a guest entrance and a shared
// passphrase per partner.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"go.uber.org/zap"
)

// Kind selects the entrance used to log in.
type Kind string

const (
	KindGuest  Kind = "guest"
	KindCouple Kind = "couple"
)

// Passphrases of the two partners.
const (
	passphraseA = "1071"
	passphraseB = "2021"
)

// ErrorDisplay is how long a failed attempt keeps the error indicator on.
const ErrorDisplay = time.Second

var (
	// ErrInvalidSecret is returned for a couple login with a wrong passphrase.
	ErrInvalidSecret = errors.New("invalid passphrase")
	// ErrUnknownKind is returned for an entrance other than guest or couple.
	ErrUnknownKind = errors.New("unknown login kind")
)

// Controller holds the session-local identity.
type Controller struct {
	mu            sync.Mutex
	identity      models.Identity
	authenticated bool
	errorUntil    time.Time
	now           func() time.Time
	log           *zap.Logger
}

// New returns an unauthenticated controller. now stamps the error indicator
// and defaults to time.Now.
func New(log *zap.Logger, now func() time.Time) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{identity: models.Guest, now: now, log: log}
}

// Login authenticates through the given entrance. A guest login always
// succeeds. A failed couple login leaves the current identity untouched and
// raises the error indicator for ErrorDisplay.
func (c *Controller) Login(kind Kind, secret string) (models.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id models.Identity
	switch kind {
	case KindGuest:
		id = models.Guest
	case KindCouple:
		switch secret {
		case passphraseA:
			id = models.PersonA
		case passphraseB:
			id = models.PersonB
		default:
			c.errorUntil = c.now().Add(ErrorDisplay)
			c.log.Info("login attempt", zap.String("kind", string(kind)), zap.String("outcome", "rejected"))
			return c.identity, ErrInvalidSecret
		}
	default:
		c.log.Info("login attempt", zap.String("kind", string(kind)), zap.String("outcome", "unknown kind"))
		return c.identity, ErrUnknownKind
	}

	c.identity = id
	c.authenticated = true
	c.errorUntil = time.Time{}
	c.log.Info("login attempt",
		zap.String("kind", string(kind)),
		zap.String("outcome", "accepted"),
		zap.String("identity", string(id)))
	return id, nil
}

// Logout returns to the unauthenticated state.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = models.Guest
	c.authenticated = false
	c.errorUntil = time.Time{}
}

// Identity returns the current identity and whether anyone is logged in.
func (c *Controller) Identity() (models.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.authenticated
}

// ErrorVisible reports whether the failed-login indicator is on at now.
func (c *Controller) ErrorVisible(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Before(c.errorUntil)
}
