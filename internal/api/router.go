package api

import (
	"log/slog"
	"net/http"

	"github.com/avdeev/events-manager/internal/api/handlers"
	"github.com/avdeev/events-manager/internal/api/middleware"
	"github.com/avdeev/events-manager/internal/config"
	"github.com/avdeev/events-manager/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(services *service.Services, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(corsMiddleware(cfg))

	// Operational routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Events Management API"}`))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	publicHandler := handlers.NewPublicHandler(services.Event, logger)
	userHandler := handlers.NewUserHandler(services.User, services.Event, logger)
	eventHandler := handlers.NewEventHandler(services.Event, logger)

	// Public routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})
	r.Get("/public/events", publicHandler.ListEvents)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth))

		r.Route("/users", func(r chi.Router) {
			r.Get("/profile", userHandler.Profile)
			r.Get("/events", userHandler.Events)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.Create)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
			r.Post("/{id}/participate", eventHandler.Participate)
			r.Get("/{id}/participants", eventHandler.Participants)
		})
	})

	return r
}

// corsMiddleware applies the configured allow-list; an empty list allows any
// origin (development mode, matching the original deployment behavior).
func corsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: len(cfg.AllowedOrigins) > 0,
	})
}
