package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultChatWindow is the number of recent messages a chat subscriber
// receives when it does not ask for a specific limit.
const DefaultChatWindow = 100

// Attacher hands an upgraded connection to the snapshot hub.
type Attacher interface {
	Attach(ctx context.Context, conn *websocket.Conn, feed models.Feed, limit int) error
}

// SubscribeHandler upgrades GET /api/subscribe/{feed} to a websocket that
// receives a full snapshot on connect and after every write.
type SubscribeHandler struct {
	Hub      Attacher
	Logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewSubscribeHandler builds a handler accepting the given browser origins.
// An empty list or "*" accepts any origin.
func NewSubscribeHandler(hub Attacher, origins []string, logger *zap.Logger) *SubscribeHandler {
	return &SubscribeHandler{
		Hub:    hub,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 ||
					slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
	}
}

// Subscribe handles the websocket upgrade.
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	feed := models.Feed(chi.URLParam(r, "feed"))
	if !feed.Valid() {
		http.Error(w, "unknown feed", http.StatusNotFound)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}
	if q.Limit == 0 && feed == models.FeedMessages {
		q.Limit = DefaultChatWindow
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	if err := h.Hub.Attach(r.Context(), conn, feed, q.Limit); err != nil {
		h.Logger.Warn("failed to attach subscriber", zap.String("feed", string(feed)), zap.Error(err))
		_ = conn.Close()
	}
}
