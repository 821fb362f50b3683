// Package feed is the client side of the remote feed store: one-shot HTTP
// reads and writes plus live websocket subscriptions that deliver full
// snapshots.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// ErrStatus is wrapped by every error caused by an unexpected HTTP status.
var ErrStatus = errors.New("unexpected status")

// IdentityHeader carries the acting identity on every request.
const IdentityHeader = "X-Ourstory-Identity"

// Client talks to one feed server.
type Client struct {
	base     *url.URL
	http     *http.Client
	dialer   *websocket.Dialer
	identity atomic.Value
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDialer replaces the default websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// New returns a client for the server at baseURL (http or https).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{},
		dialer: websocket.DefaultDialer,
	}
	c.identity.Store(models.Guest)
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetIdentity sets the identity reported on subsequent requests.
func (c *Client) SetIdentity(id models.Identity) {
	c.identity.Store(id)
}

func (c *Client) currentIdentity() models.Identity {
	return c.identity.Load().(models.Identity)
}

// MarkSeen stamps seenAt on the given chat messages.
func (c *Client) MarkSeen(ctx context.Context, ids []string, at time.Time) error {
	body := struct {
		IDs    []string  `json:"ids"`
		SeenAt time.Time `json:"seenAt"`
	}{ids, at}
	return c.do(ctx, http.MethodPost, "/api/messages/seen", nil, body, nil, http.StatusNoContent)
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(IdentityHeader, string(c.currentIdentity()))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func queryValues(q models.Query) url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Before != nil {
		v.Set("before", q.Before.UTC().Format(time.RFC3339Nano))
	}
	return v
}
