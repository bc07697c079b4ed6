package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Routes constructs the chi router containing all endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(a.config.RateLimitPerMin, time.Minute))

	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "taskd")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if a.ready != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
			defer cancel()
			if err := a.ready(ctx); err != nil {
				respondError(w, http.StatusServiceUnavailable, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", a.handleLogin)
		r.Post("/refresh", a.handleRefresh)
		r.Post("/forgot-password", a.handleForgotPassword)
		r.Post("/reset-password", a.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)
			r.Post("/logout", a.handleLogout)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", a.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)
			r.Get("/", a.handleListUsers)
			r.Get("/profile", a.handleGetProfile)
			r.Patch("/profile", a.handleUpdateProfile)
			r.Patch("/preferences", a.handleUpdatePreferences)
			r.Get("/{id}", a.handleGetUser)
			r.Delete("/{id}", a.handleDeleteUser)
		})
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(a.requireAuth)
		r.Post("/", a.handleCreateTodo)
		r.Get("/", a.handleListTodos)
		r.Get("/statistics", a.handleTodoStats)
		r.Get("/{id}", a.handleGetTodo)
		r.Patch("/{id}", a.handleUpdateTodo)
		r.Delete("/{id}", a.handleDeleteTodo)
		r.Post("/{id}/attachments", a.handleCreateAttachment)
	})

	return r
}
