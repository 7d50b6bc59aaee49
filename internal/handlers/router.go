package handlers

import (
	"net/http"
	"time"

	"github.com/Shem717/IFTA-WAY-Rev26/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Auth      *AuthHandler
	Entries   *EntryHandler
	Trucks    *TruckHandler
	Reports   *ReportHandler
	Receipts  *ReceiptHandler
	Dashboard *DashboardHandler

	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimitMiddleware
	Log         logrus.FieldLogger

	CORSOrigins    []string
	ScanRateLimit  int
	ScanRateWindow time.Duration
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = middleware.NewRateLimitMiddleware()
	}
	if cfg.ScanRateLimit < 1 {
		cfg.ScanRateLimit = 10
	}
	if cfg.ScanRateWindow <= 0 {
		cfg.ScanRateWindow = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "Retry-After", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", Health)
	r.Post("/api/auth/register", cfg.Auth.Register)
	r.Post("/api/auth/login", cfg.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(cfg.Tokens).Authenticate)

		r.Get("/api/auth/me", cfg.Auth.GetProfile)

		r.Route("/api/trucks", func(r chi.Router) {
			r.Get("/", cfg.Trucks.List)
			r.Post("/", cfg.Trucks.Create)
			r.Delete("/{id}", cfg.Trucks.Delete)
		})

		r.Route("/api/entries", func(r chi.Router) {
			r.Get("/", cfg.Entries.List)
			r.Post("/", cfg.Entries.Create)
			r.Get("/{id}", cfg.Entries.Get)
			r.Put("/{id}", cfg.Entries.Update)
			r.Delete("/{id}", cfg.Entries.Delete)
			r.Patch("/{id}/ignore", cfg.Entries.SetIgnored)
		})

		r.With(cfg.RateLimiter.RateLimit(cfg.ScanRateLimit, cfg.ScanRateWindow)).
			Post("/api/receipts/scan", cfg.Receipts.Scan)

		r.Post("/api/reports/generate", cfg.Reports.Generate)
		r.Get("/api/reports/export", cfg.Reports.Export)

		r.Get("/api/dashboard", cfg.Dashboard.Get)
	})

	return r
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
