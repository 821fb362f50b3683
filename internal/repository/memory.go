package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/google/uuid"
)

// MemoryMessageRepository keeps chat messages in process memory. It is used
// when no database is configured and in tests.
type MemoryMessageRepository struct {
	mu   sync.RWMutex
	msgs map[string]models.ChatMessage
}

// NewMemoryMessageRepository returns an empty in-memory message store.
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{msgs: make(map[string]models.ChatMessage)}
}

func (r *MemoryMessageRepository) Insert(_ context.Context, m models.ChatMessage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.NewString()
	m.Timestamp = m.Timestamp.UTC()
	r.msgs[m.ID] = m
	return m.ID, nil
}

func (r *MemoryMessageRepository) List(_ context.Context, q models.Query) ([]models.ChatMessage, error) {
	r.mu.RLock()
	out := make([]models.ChatMessage, 0, len(r.msgs))
	for _, m := range r.msgs {
		if q.Before != nil && m.Timestamp.After(*q.Before) {
			continue
		}
		out = append(out, m)
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.ChatMessage) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

func (r *MemoryMessageRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.msgs[id]; ok {
			delete(r.msgs, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryMessageRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.msgs {
		if !m.Timestamp.After(cutoff) {
			delete(r.msgs, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryMessageRepository) MarkSeen(_ context.Context, ids []string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		m, ok := r.msgs[id]
		if !ok || m.SeenAt != nil {
			continue
		}
		seen := at.UTC()
		m.SeenAt = &seen
		r.msgs[id] = m
		n++
	}
	return n, nil
}

// MemoryRecipeRepository keeps recipes in process memory.
type MemoryRecipeRepository struct {
	mu      sync.RWMutex
	recipes map[string]models.Recipe
}

// NewMemoryRecipeRepository returns an empty in-memory recipe store.
func NewMemoryRecipeRepository() *MemoryRecipeRepository {
	return &MemoryRecipeRepository{recipes: make(map[string]models.Recipe)}
}

func (r *MemoryRecipeRepository) Insert(_ context.Context, rec models.Recipe) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.Ingredients = nonNil(slices.Clone(rec.Ingredients))
	rec.Steps = nonNil(slices.Clone(rec.Steps))
	r.recipes[rec.ID] = rec
	return rec.ID, nil
}

func (r *MemoryRecipeRepository) List(_ context.Context, limit int) ([]models.Recipe, error) {
	r.mu.RLock()
	out := make([]models.Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		out = append(out, rec)
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Recipe) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRecipeRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.recipes[id]; ok {
			delete(r.recipes, id)
			n++
		}
	}
	return n, nil
}
