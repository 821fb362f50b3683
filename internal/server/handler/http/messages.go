// Package http provides the HTTP and WebSocket surface of the feed server.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/atinyakov/ourstory/internal/service"
	"github.com/goccy/go-json"
)

// MessageService defines the chat operations required by MessageHandler.
type MessageService interface {
	AppendMessage(ctx context.Context, m models.ChatMessage) (string, error)
	Messages(ctx context.Context, q models.Query) ([]models.ChatMessage, error)
	DeleteMessages(ctx context.Context, ids []string) (int64, error)
	MarkSeen(ctx context.Context, ids []string, at time.Time) error
}

// MessageHandler serves the chat feed.
type MessageHandler struct {
	Service MessageService
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type seenRequest struct {
	IDs    []string  `json:"ids"`
	SeenAt time.Time `json:"seenAt"`
}

// List handles GET /api/messages. Optional query parameters: limit (most
// recent N) and before (RFC 3339, inclusive).
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, "invalid query", http.StatusBadRequest)
		return
	}
	msgs, err := h.Service.Messages(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Append handles POST /api/messages.
func (h *MessageHandler) Append(w http.ResponseWriter, r *http.Request) {
	var m models.ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	id, err := h.Service.AppendMessage(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Delete handles POST /api/messages/delete.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	n, err := h.Service.DeleteMessages(r.Context(), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Seen handles POST /api/messages/seen.
func (h *MessageHandler) Seen(w http.ResponseWriter, r *http.Request) {
	var req seenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Service.MarkSeen(r.Context(), req.IDs, req.SeenAt); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseQuery(r *http.Request) (models.Query, error) {
	var q models.Query
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, errors.New("bad limit")
		}
		q.Limit = n
	}
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return q, err
		}
		q.Before = &t
	}
	return q, nil
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
