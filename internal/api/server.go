package api

import (
	"net/http"

	"nutrigenie/internal/app"
	"nutrigenie/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Options tune the HTTP surface.
type Options struct {
	// Requests per minute allowed on generation endpoints. Zero disables
	// the limiter.
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Server exposes the App as a JSON API.
type Server struct {
	router   *chi.Mux
	app      *app.App
	signer   *session.TokenSigner
	validate *validator.Validate
}

// New builds the router with every route registered.
func New(application *app.App, signer *session.TokenSigner, opts Options) *Server {
	server := &Server{
		router:   chi.NewRouter(),
		app:      application,
		signer:   signer,
		validate: validator.New(),
	}

	router := server.router
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/api/login", server.Login)

	router.Group(func(r chi.Router) {
		r.Use(RequireSession(signer))

		r.Post("/api/logout", server.Logout)
		r.Get("/api/session", server.Session)
		r.Put("/api/session/view", server.SetView)
		r.Put("/api/session/day", server.SelectDay)
		r.Post("/api/session/expand", server.ToggleSteps)

		r.Get("/api/preferences", server.Preferences)
		r.Put("/api/preferences", server.SavePreferences)
		r.Put("/api/profile", server.UpdateProfile)

		r.Get("/api/favorites", server.Favorites)
		r.Post("/api/favorites/toggle", server.ToggleFavorite)

		r.Post("/api/water", server.AddWater)
		r.Delete("/api/water", server.ResetWater)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(opts.RateLimitPerMinute, opts.RateLimitBurst))

			r.Post("/api/plan", server.GeneratePlan)
			r.Post("/api/grocery", server.BuildGroceryList)
			r.Post("/api/track", server.TrackIntake)
		})
	})

	return server
}

// Mount attaches an extra handler, such as the Telegram webhook.
func (server *Server) Mount(pattern string, handler http.Handler) {
	server.router.Handle(pattern, handler)
}

func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	server.router.ServeHTTP(w, r)
}
