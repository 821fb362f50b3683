package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/atinyakov/ourstory/internal/models"
)

// Feed is a typed handle on one remote feed.
type Feed[T any] struct {
	c    *Client
	name models.Feed
}

// Messages returns the chat feed.
func Messages(c *Client) *Feed[models.ChatMessage] {
	return &Feed[models.ChatMessage]{c: c, name: models.FeedMessages}
}

// Recipes returns the recipe feed.
func Recipes(c *Client) *Feed[models.Recipe] {
	return &Feed[models.Recipe]{c: c, name: models.FeedRecipes}
}

// Name returns the feed name.
func (f *Feed[T]) Name() models.Feed {
	return f.name
}

// Query fetches the current items once. q.Before is an inclusive cutoff.
func (f *Feed[T]) Query(ctx context.Context, q models.Query) ([]T, error) {
	var items []T
	err := f.c.do(ctx, http.MethodGet, "/api/"+string(f.name), queryValues(q), nil, &items, http.StatusOK)
	return items, err
}

// Append stores item and returns the id the server assigned. It is not
// retried.
func (f *Feed[T]) Append(ctx context.Context, item T) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := f.c.do(ctx, http.MethodPost, "/api/"+string(f.name), nil, item, &resp, http.StatusCreated); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteMany removes the given items. Partial failure is not rolled back.
func (f *Feed[T]) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := struct {
		IDs []string `json:"ids"`
	}{ids}
	return f.c.do(ctx, http.MethodPost, "/api/"+string(f.name)+"/delete", nil, body, nil, http.StatusOK)
}

// Subscribe opens a live subscription. The first snapshot arrives as soon
// as the server sends it; every later one replaces it.
func (f *Feed[T]) Subscribe(ctx context.Context, q models.Query) (*Stream[T], error) {
	u := f.c.endpoint("/api/subscribe/"+string(f.name), queryValues(models.Query{Limit: q.Limit}))
	wsURL, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	header := http.Header{}
	header.Set(IdentityHeader, string(f.c.currentIdentity()))

	conn, resp, err := f.c.dialer.DialContext(ctx, wsURL.String(), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", f.name, err)
	}
	return newStream[T](conn), nil
}
