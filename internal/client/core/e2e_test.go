package core_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atinyakov/ourstory/internal/client/core"
	"github.com/atinyakov/ourstory/internal/client/feed"
	"github.com/atinyakov/ourstory/internal/client/prefs"
	"github.com/atinyakov/ourstory/internal/client/session"
	"github.com/atinyakov/ourstory/internal/hub"
	"github.com/atinyakov/ourstory/internal/models"
	"github.com/atinyakov/ourstory/internal/repository"
	handler "github.com/atinyakov/ourstory/internal/server/handler/http"
	"github.com/atinyakov/ourstory/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.NewFeedService(repository.NewMemoryMessageRepository(), repository.NewMemoryRecipeRepository(), nil)
	h := hub.New(svc, zap.NewNop())
	svc.SetNotifier(h)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.Serve(ctx) }()

	srv := httptest.NewServer(handler.NewRouter(
		&handler.MessageHandler{Service: svc},
		&handler.RecipeHandler{Service: svc},
		handler.NewSubscribeHandler(h, nil, zap.NewNop()),
		nil, zap.NewNop(),
	))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

func newApp(t *testing.T, url string) *core.App {
	t.Helper()
	c, err := feed.New(url)
	require.NoError(t, err)
	kv, err := prefs.OpenBadger("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	app := core.New(core.Config{
		Messages: core.FromFeed(feed.Messages(c)),
		Recipes:  core.FromFeed(feed.Recipes(c)),
		Seen:     c,
		Identity: c,
		Prefs:    prefs.New(kv, nil),
	})
	t.Cleanup(app.Close)
	return app
}

func texts(msgs []models.ChatMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func TestTwoSessionsSeeTheSameChat(t *testing.T) {
	srv := startServer(t)
	her := newApp(t, srv.URL)
	him := newApp(t, srv.URL)

	_, err := her.Login(session.KindCouple, "1071")
	require.NoError(t, err)
	_, err = him.Login(session.KindCouple, "2021")
	require.NoError(t, err)
	for _, app := range []*core.App{her, him} {
		app := app
		require.Eventually(t, func() bool { return app.ChatState() == core.Live }, 3*time.Second, 10*time.Millisecond)
	}

	require.NoError(t, him.SendMessage("günaydın"))
	require.Eventually(t, func() bool { return len(her.Chat()) == 1 }, 3*time.Second, 10*time.Millisecond)
	// Ensure the next message gets a later timestamp.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, her.SendMessage("hi"))

	for _, app := range []*core.App{her, him} {
		app := app
		require.Eventually(t, func() bool { return len(app.Chat()) == 2 }, 3*time.Second, 10*time.Millisecond)
		chat := app.Chat()
		assert.Equal(t, []string{"günaydın", "hi"}, texts(chat))
		assert.Equal(t, models.PersonA, chat[1].Sender)
	}

	require.NoError(t, her.MarkSeen())
	require.Eventually(t, func() bool {
		chat := him.Chat()
		return len(chat) == 2 && chat[0].SeenAt != nil && chat[1].SeenAt == nil
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, him.ClearChat())
	require.Eventually(t, func() bool { return len(her.Chat()) == 0 && len(him.Chat()) == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestGuestBrowsesRecipesAddedByPartner(t *testing.T) {
	srv := startServer(t)
	her := newApp(t, srv.URL)
	guest := newApp(t, srv.URL)

	_, err := her.Login(session.KindCouple, "1071")
	require.NoError(t, err)
	_, err = guest.Login(session.KindGuest, "")
	require.NoError(t, err)
	guest.Navigate("recipes")
	require.Eventually(t, func() bool { return guest.RecipesState() == core.Live }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, her.AddRecipe(core.RecipeDraft{
		Title:       "Sütlaç",
		Category:    models.CategoryDessert,
		Difficulty:  models.DifficultyEasy,
		Ingredients: "süt\npirinç\nşeker",
		Steps:       "kaynat\nfırınla",
	}))

	require.Eventually(t, func() bool { return len(guest.Recipes(models.CategoryDessert, "sütlaç")) == 1 }, 3*time.Second, 10*time.Millisecond)
	r := guest.Recipes(core.CategoryAll, "")[0]
	assert.Equal(t, []string{"süt", "pirinç", "şeker"}, r.Ingredients)
	assert.ErrorIs(t, guest.DeleteRecipe(r.ID), core.ErrForbidden)

	require.NoError(t, her.DeleteRecipe(r.ID))
	require.Eventually(t, func() bool { return len(guest.Recipes(core.CategoryAll, "")) == 0 }, 3*time.Second, 10*time.Millisecond)
}
