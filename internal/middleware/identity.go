// Package middleware provides HTTP middlewares for identity tagging and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/ourstory/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityHeader carries the identity the client is acting as.
const IdentityHeader = "X-Ourstory-Identity"

// WithIdentity copies the identity header into the request context so that
// request logs can attribute writes. It never rejects a request: the server
// trusts whatever the client claims, and an absent or unknown value is
// recorded as guest.
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := models.Identity(r.Header.Get(IdentityHeader))
		if !id.Privileged() {
			id = models.Guest
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the identity stored by WithIdentity, or guest.
func IdentityFromContext(ctx context.Context) models.Identity {
	if id, ok := ctx.Value(identityKey).(models.Identity); ok {
		return id
	}
	return models.Guest
}
