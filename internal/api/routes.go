package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mreyes/reel-server/internal/cache"
	"github.com/mreyes/reel-server/internal/config"
	"github.com/mreyes/reel-server/internal/db"
	"github.com/mreyes/reel-server/internal/studio"
	"github.com/mreyes/reel-server/internal/synopsis"
)

func NewRouter(cfg *config.Config, database *db.DB, producer *studio.Producer, store *cache.Store, provider synopsis.Provider) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)

	handlers := NewHandlers(cfg, database, producer, store, provider)
	limiter := NewRateLimiter(60, time.Minute)

	// Public endpoints
	r.Get("/health", handlers.Health)

	// API v1 routes (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg))
		r.Use(RateLimitMiddleware(limiter))
		r.Use(JSONContentType)

		r.Post("/anecdotes", handlers.CreateAnecdote)
		r.Get("/anecdotes", handlers.ListAnecdotes)
		r.Get("/anecdotes/{id}", handlers.GetAnecdote)
		r.Put("/anecdotes/{id}", handlers.UpdateAnecdote)
		r.Delete("/anecdotes/{id}", handlers.DeleteAnecdote)

		r.Get("/storylines", handlers.Storylines)
		r.Post("/storylines/rebuild", handlers.Rebuild)
		r.Get("/storylines/{id}", handlers.Storyline)
		r.Post("/storylines/{id}/synopsis", handlers.Synopsis)
	})

	return r
}
