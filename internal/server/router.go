package server

import (
	"net/http"

	"github.com/cloo-solutions/onetool/internal/api"
	"github.com/cloo-solutions/onetool/internal/api/handlers"
	"github.com/cloo-solutions/onetool/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

const defaultMaxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	AuthValidator     middleware.AuthValidator
	ToolHandler       *handlers.ToolHandler
	PreferenceHandler *handlers.PreferenceHandler
	CalcHandler       *handlers.CalcHandler
	AuthHandler       *handlers.AuthHandler
	HealthHandler     *handlers.HealthHandler

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	MaxBodyBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.SentryMiddleware)
	r.Use(corsHandler(cfg.AllowedOrigins))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	limit := func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Health)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}

	r.Group(func(r chi.Router) {
		limit(r)

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", cfg.ToolHandler.List)
			r.Get("/categories", cfg.ToolHandler.Categories)
			r.Get("/{slug}", cfg.ToolHandler.Get)
		})

		r.Route("/calc", func(r chi.Router) {
			r.Post("/sip", cfg.CalcHandler.SIP)
			r.Post("/emi", cfg.CalcHandler.EMI)
			r.Post("/bmi", cfg.CalcHandler.BMI)
		})

		r.Post("/accounts", cfg.AuthHandler.CreateAccount)
		r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAPIKeyAuth(cfg.AuthValidator))
		limit(r)

		r.Get("/search", cfg.ToolHandler.Search)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		limit(r)

		r.Post("/search/feedback", cfg.ToolHandler.SearchFeedback)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", cfg.PreferenceHandler.List)
			r.Delete("/", cfg.PreferenceHandler.Clear)
			r.Get("/{key}", cfg.PreferenceHandler.Get)
			r.Put("/{key}", cfg.PreferenceHandler.Put)
			r.Delete("/{key}", cfg.PreferenceHandler.Delete)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", cfg.PreferenceHandler.Favorites)
			r.Put("/{slug}", cfg.PreferenceHandler.AddFavorite)
			r.Delete("/{slug}", cfg.PreferenceHandler.RemoveFavorite)
		})

		r.Route("/recent", func(r chi.Router) {
			r.Get("/", cfg.PreferenceHandler.Recent)
			r.Post("/{slug}", cfg.PreferenceHandler.RecordVisit)
		})
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	})
	return c.Handler
}
