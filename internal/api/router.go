// Package api serves the MovieNight operations as a JSON HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/movienight/internal/service/movienight"
)

// MovieNight is the set of operations the HTTP API exposes.
type MovieNight interface {
	Login(ctx context.Context, req *movienight.LoginRequest) (*movienight.SessionResponse, error)
	Logout(ctx context.Context, token string) (*movienight.StatusResponse, error)
	CreateUser(ctx context.Context, req *movienight.CreateUserRequest) (*movienight.SessionResponse, error)
	CreatePair(ctx context.Context, token string, req *movienight.CreatePairRequest) (*movienight.PartnerResponse, error)
	GetPair(ctx context.Context, token string) (*movienight.PartnerResponse, error)
	GetMovie(ctx context.Context, token string) (*movienight.MovieResponse, error)
	RateMovie(ctx context.Context, token string, req *movienight.RateMovieRequest) (*movienight.StatusResponse, error)
	GetRecommendation(ctx context.Context, token string) ([]movienight.RecommendationResponse, error)
}

// HealthFunc reports whether the backing stores are reachable.
type HealthFunc func(ctx context.Context) error

// RouterConfig holds the middleware settings of the router.
type RouterConfig struct {
	CORSOrigins []string

	// Per-IP request limits per minute. Zero disables the limiter.
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int

	// MovieProviderState reports the movie provider's circuit breaker state
	// in /healthz. Optional.
	MovieProviderState func() string
}

// NewRouter builds the chi router with the full middleware stack.
func NewRouter(svc MovieNight, health HealthFunc, logger *slog.Logger, cfg RouterConfig) http.Handler {
	h := &Handler{svc: svc, health: health, providerState: cfg.MovieProviderState, logger: logger}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(requestMetrics)
		r.Use(rateLimit(cfg.RateLimitPerMinute))

		// account creation and login are the brute force targets
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(cfg.AuthRateLimitPerMinute))
			r.Post("/login", h.Login)
			r.Post("/user", h.CreateUser)
		})

		r.Post("/logout", h.Logout)
		r.Post("/pair", h.CreatePair)
		r.Get("/pair", h.GetPair)
		r.Get("/movie", h.GetMovie)
		r.Post("/rating", h.RateMovie)
		r.Get("/recommendation", h.GetRecommendation)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}
