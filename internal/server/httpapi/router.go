package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/logging"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Logger logging.Logger
	// Registry collects HTTP metrics and is exposed on /metrics. A private
	// registry is created when nil.
	Registry    *prometheus.Registry
	CORSOrigins []string
	Info        Info
	Checks      map[string]HealthCheck
	// PublicList serves GET /api/v1/visitors/ without a bearer token.
	PublicList bool
}

// NewRouter builds the HTTP surface:
//
//	GET  /                          service info
//	GET  /health                    dependency checks
//	GET  /metrics                   prometheus exposition
//	POST /api/v1/visitors/register
//	POST /api/v1/visitors/login
//	GET  /api/v1/visitors/me        (bearer)
//	PUT  /api/v1/visitors/me        (bearer)
//	POST /api/v1/visitors/me/avatar (bearer)
//	GET  /api/v1/visitors/          (bearer unless Options.PublicList) paged list
func NewRouter(accounts AccountManager, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logging.Nop{}
	}
	log = log.With("module", "http")

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	h := &Handler{accounts: accounts, log: log, info: opts.Info, checks: opts.Checks}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(newHTTPMetrics(reg).middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1/visitors", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		if opts.PublicList {
			r.Get("/", h.list)
		}

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			if !opts.PublicList {
				r.Get("/", h.list)
			}
			r.Get("/me", h.me)
			r.Put("/me", h.updateMe)
			r.Post("/me/avatar", h.avatarUpload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
