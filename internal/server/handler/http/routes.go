package http

import (
	"net/http"

	"github.com/atinyakov/ourstory/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter constructs the feed server handler.
//
// Routes:
//
//	GET    /api/messages            → messages.List
//	POST   /api/messages            → messages.Append
//	POST   /api/messages/delete     → messages.Delete
//	POST   /api/messages/seen       → messages.Seen
//	GET    /api/recipes             → recipes.List
//	POST   /api/recipes             → recipes.Append
//	POST   /api/recipes/delete      → recipes.DeleteMany
//	DELETE /api/recipes/{id}        → recipes.Delete
//	GET    /api/subscribe/{feed}    → subscribe.Subscribe (websocket)
//	GET    /healthz
//	GET    /metrics
//
// Write routes accept only application/json. There is no authorization:
// the identity header is recorded for logs and nothing else.
func NewRouter(
	messages *MessageHandler,
	recipes *RecipeHandler,
	subscribe *SubscribeHandler,
	origins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(corsOptions(origins)))
	r.Use(middleware.WithIdentity)
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/subscribe/{feed}", subscribe.Subscribe)
		r.Get("/messages", messages.List)
		r.Get("/recipes", recipes.List)
		r.Delete("/recipes/{id}", recipes.Delete)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/messages", messages.Append)
			r.Post("/messages/delete", messages.Delete)
			r.Post("/messages/seen", messages.Seen)
			r.Post("/recipes", recipes.Append)
			r.Post("/recipes/delete", recipes.DeleteMany)
		})
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	allowed := origins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.IdentityHeader},
		MaxAge:         300,
	}
}
