package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/afisha-board/backend/internal/api/handlers"
	"github.com/afisha-board/backend/internal/api/httpx"
	"github.com/afisha-board/backend/internal/config"
	"github.com/afisha-board/backend/internal/metrics"
	"github.com/afisha-board/backend/internal/middleware"
	"github.com/afisha-board/backend/internal/services"
	"github.com/afisha-board/backend/internal/session"
)

type Deps struct {
	Users  *services.UserService
	Events *services.EventService
	Gate   *session.Gate
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	auth := handlers.NewAuthHandler(d.Users, d.Gate, cfg.SessionTTL, cfg.Env == "prod")
	ev := handlers.NewEventsHandler(d.Events)
	sess := &middleware.SessionAuth{Gate: d.Gate}

	r.Post("/register", auth.Register)
	r.Post("/login", auth.Login)
	r.Post("/logout", auth.Logout)
	r.Get("/logout", auth.Logout)

	// target of the unauthenticated redirect; the actual form belongs to the
	// front end sitting on top of this API
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "POST credentials to /login"})
	})

	// browser-shaped reads: bounce to login when there is no session
	r.Group(func(r chi.Router) {
		r.Use(sess.RequireOrLogin)
		r.Get("/events", ev.List)
		r.Get("/events/{id}", ev.Get)
	})

	// mutations: plain 401 for missing auth
	r.Group(func(r chi.Router) {
		r.Use(sess.Require)
		r.Post("/events", ev.Create)
		r.Put("/events/{id}", ev.Update)
		r.Delete("/events/{id}", ev.Delete)
	})

	// uploaded images, when stored on local disk
	if cfg.MediaStore == "disk" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.MediaDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
