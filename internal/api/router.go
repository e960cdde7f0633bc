package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/isdelr/lockedin-be/internal/api/handlers"
	"github.com/isdelr/lockedin-be/internal/auth"
	"github.com/isdelr/lockedin-be/internal/metrics"
	"github.com/isdelr/lockedin-be/internal/progress"
	"github.com/isdelr/lockedin-be/internal/services"
	"github.com/isdelr/lockedin-be/internal/websocket"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Users        services.UserServiceProvider
	Habits       services.HabitServiceProvider
	Completions  services.CompletionServiceProvider
	Days         services.DayServiceProvider
	Leaderboard  services.LeaderboardServiceProvider
	Activity     services.ActivityServiceProvider
	Export       services.ExportServiceProvider
	Presets      services.PresetServiceProvider
	Hub          *websocket.Hub
	Tokens       *auth.TokenManager
	Clock        *progress.DayClock
	DB           handlers.Pinger
	AuthLimiter  *RateLimiter
	Origins      []string
	SecureCookie bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(d.Users, d.Export, d.Tokens, d.Clock, d.SecureCookie)
	habitHandler := handlers.NewHabitHandler(d.Habits, d.Completions, d.Clock)
	dayHandler := handlers.NewDayHandler(d.Days, d.Clock)
	leaderboardHandler := handlers.NewLeaderboardHandler(d.Leaderboard)
	activityHandler := handlers.NewActivityHandler(d.Activity)
	presetHandler := handlers.NewPresetHandler(d.Presets)
	healthHandler := handlers.NewHealthHandler(d.DB)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		if d.Hub != nil {
			wsHandler := handlers.NewWebSocketHandler(d.Hub, d.Tokens, originAllowed(d.Origins))
			r.Get("/ws", wsHandler.Serve)
		}

		r.Route("/auth", func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
		})

		r.Get("/leaderboard", leaderboardHandler.Get)
		r.Get("/presets", presetHandler.GetAll)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(d.Tokens.Middleware())

			r.Route("/user", func(r chi.Router) {
				r.Get("/", userHandler.GetMe)
				r.Delete("/", userHandler.Delete)
				r.Put("/name", userHandler.UpdateName)
				r.Put("/photo", userHandler.UpdatePhoto)
				r.Get("/export", userHandler.Export)
			})

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", habitHandler.GetAll)
				r.Post("/", habitHandler.Create)
				r.Post("/bulk", habitHandler.BulkCreate)
				r.Route("/{id}", func(r chi.Router) {
					r.Delete("/", habitHandler.Delete)
					r.Post("/toggle", habitHandler.Toggle)
				})
			})

			r.Post("/day/complete", dayHandler.Complete)
			r.Post("/day/fail", dayHandler.Fail)
			r.Post("/sprint/reset", dayHandler.ResetSprint)
			r.Get("/activity", activityHandler.GetRecent)
			r.Post("/presets/{id}/apply", presetHandler.Apply)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}` + "\n"))
	})

	return r
}

// originAllowed matches websocket origins against the CORS list.
func originAllowed(origins []string) func(string) bool {
	return func(origin string) bool {
		for _, o := range origins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
