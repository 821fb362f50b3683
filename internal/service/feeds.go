// Package service provides the feed business logic of the server:
// required-field validation, delegation to repositories and change
// notification towards live subscribers.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/ourstory/internal/metrics"
	"github.com/atinyakov/ourstory/internal/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid input")

// MessageRepository defines the persistence operations needed for chat.
type MessageRepository interface {
	// Insert stores a message and returns its new id.
	Insert(ctx context.Context, m models.ChatMessage) (string, error)
	// List returns messages ascending by timestamp, narrowed by q.
	List(ctx context.Context, q models.Query) ([]models.ChatMessage, error)
	// DeleteMany removes messages by id.
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	// MarkSeen sets seenAt on unseen messages.
	MarkSeen(ctx context.Context, ids []string, at time.Time) (int64, error)
}

// RecipeRepository defines the persistence operations needed for recipes.
type RecipeRepository interface {
	Insert(ctx context.Context, r models.Recipe) (string, error)
	List(ctx context.Context, limit int) ([]models.Recipe, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// Notifier is told after every successful write so subscribers can be sent
// a fresh snapshot.
type Notifier interface {
	Notify(feed models.Feed)
}

// FeedService implements the two remote feeds on top of their repositories.
type FeedService struct {
	messages MessageRepository
	recipes  RecipeRepository
	notifier Notifier
	validate *validator.Validate
}

// NewFeedService constructs a FeedService. notifier may be nil.
func NewFeedService(messages MessageRepository, recipes RecipeRepository, notifier Notifier) *FeedService {
	return &FeedService{
		messages: messages,
		recipes:  recipes,
		notifier: notifier,
		validate: validator.New(),
	}
}

// SetNotifier wires the change notifier after construction.
func (s *FeedService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *FeedService) notify(feed models.Feed) {
	if s.notifier != nil {
		s.notifier.Notify(feed)
	}
}

func (s *FeedService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// AppendMessage validates m and stores it. The id on m is ignored.
func (s *FeedService) AppendMessage(ctx context.Context, m models.ChatMessage) (string, error) {
	if err := s.check(m); err != nil {
		metrics.FeedWrites.WithLabelValues(string(models.FeedMessages), "append", "invalid").Inc()
		return "", err
	}
	id, err := s.messages.Insert(ctx, m)
	metrics.FeedWrites.WithLabelValues(string(models.FeedMessages), "append", metrics.Result(err)).Inc()
	if err != nil {
		return "", err
	}
	s.notify(models.FeedMessages)
	return id, nil
}

// Messages returns the chat snapshot for q.
func (s *FeedService) Messages(ctx context.Context, q models.Query) ([]models.ChatMessage, error) {
	return s.messages.List(ctx, q)
}

// DeleteMessages removes the given messages.
func (s *FeedService) DeleteMessages(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.messages.DeleteMany(ctx, ids)
	metrics.FeedWrites.WithLabelValues(string(models.FeedMessages), "delete", metrics.Result(err)).Inc()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notify(models.FeedMessages)
	}
	return n, nil
}

// MarkSeen stamps seenAt on the given messages that lack it.
func (s *FeedService) MarkSeen(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if at.IsZero() {
		return fmt.Errorf("%w: seenAt is required", ErrInvalid)
	}
	n, err := s.messages.MarkSeen(ctx, ids, at)
	metrics.FeedWrites.WithLabelValues(string(models.FeedMessages), "seen", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	if n > 0 {
		s.notify(models.FeedMessages)
	}
	return nil
}

// AppendRecipe validates r and stores it.
func (s *FeedService) AppendRecipe(ctx context.Context, r models.Recipe) (string, error) {
	if err := s.check(r); err != nil {
		metrics.FeedWrites.WithLabelValues(string(models.FeedRecipes), "append", "invalid").Inc()
		return "", err
	}
	id, err := s.recipes.Insert(ctx, r)
	metrics.FeedWrites.WithLabelValues(string(models.FeedRecipes), "append", metrics.Result(err)).Inc()
	if err != nil {
		return "", err
	}
	s.notify(models.FeedRecipes)
	return id, nil
}

// Recipes returns the recipe snapshot, newest first.
func (s *FeedService) Recipes(ctx context.Context, limit int) ([]models.Recipe, error) {
	return s.recipes.List(ctx, limit)
}

// DeleteRecipes removes the given recipes.
func (s *FeedService) DeleteRecipes(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.recipes.DeleteMany(ctx, ids)
	metrics.FeedWrites.WithLabelValues(string(models.FeedRecipes), "delete", metrics.Result(err)).Inc()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notify(models.FeedRecipes)
	}
	return n, nil
}

// Snapshot returns the current items of feed narrowed by q. It is the
// source the hub uses to build snapshot frames.
func (s *FeedService) Snapshot(ctx context.Context, feed models.Feed, q models.Query) (any, error) {
	switch feed {
	case models.FeedMessages:
		return s.Messages(ctx, q)
	case models.FeedRecipes:
		return s.Recipes(ctx, q.Limit)
	default:
		return nil, fmt.Errorf("%w: unknown feed %q", ErrInvalid, feed)
	}
}
