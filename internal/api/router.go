package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tasknest/tasknest-backend/internal/api/handlers"
	"github.com/tasknest/tasknest-backend/internal/config"
	"github.com/tasknest/tasknest-backend/internal/metrics"
	"github.com/tasknest/tasknest-backend/internal/middleware"
	"github.com/tasknest/tasknest-backend/internal/services"
)

func NewRouter(cfg config.Config, users *services.UserService, tasks *services.TaskService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.HTTPMetrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(users)
	taskH := handlers.NewTaskHandler(tasks)
	authMW := middleware.NewAuthMiddleware(users)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Require)

			r.Post("/auth/logout", authH.Logout)
			r.Get("/auth/profile", authH.Profile)
			r.Patch("/auth/profile", authH.UpdateProfile)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskH.List)
				r.Post("/", taskH.Create)
				// fixed paths before the id wildcard
				r.Get("/overdue", taskH.Overdue)
				r.Get("/today", taskH.Today)

				r.Get("/{id}", taskH.Get)
				r.Patch("/{id}", taskH.Update)
				r.Delete("/{id}", taskH.Delete)
				r.Post("/{id}/complete", taskH.ToggleComplete)
			})
		})
	})

	return r
}
