// Package kernel builds the service's http.Handler: global middleware, the
// operational endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/routes"
	"github.com/nutrieve/nutrieve/config"
	"github.com/nutrieve/nutrieve/pkg/cache"
	"github.com/nutrieve/nutrieve/pkg/metrics"
	"github.com/nutrieve/nutrieve/pkg/middleware"
	"github.com/nutrieve/nutrieve/pkg/reqid"
	"github.com/nutrieve/nutrieve/pkg/response"
	"github.com/nutrieve/nutrieve/pkg/router"
	"github.com/nutrieve/nutrieve/pkg/tracing"
)

type HTTPKernel struct {
	router *router.Router
	db     *gorm.DB
}

// NewHTTPKernel wires the middleware stack and every route.
func NewHTTPKernel(d routes.Deps) *HTTPKernel {
	k := &HTTPKernel{router: router.New(), db: d.DB}
	r := k.router

	// Outermost first.
	r.Use(metrics.Middleware())
	r.Use(tracing.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.AllowedOrigins())))
	r.Use(middleware.RateLimit("global", config.Int("RATE_LIMIT_PER_MINUTE", 200), time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", "root", func(w http.ResponseWriter, _ *http.Request) {
		response.Write(w, http.StatusOK, response.Envelope{Status: http.StatusOK, Message: "Nutrieve API is running"})
	})
	r.Get("/health", "health", k.health)
	r.Get("/metrics", "metrics", metrics.Handler())

	routes.RegisterAPI(r, d)
	return k
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table for `route:list`.
func (k *HTTPKernel) Router() *router.Router { return k.router }

// Ping reports whether the database answers.
func (k *HTTPKernel) Ping(ctx context.Context) error {
	sqlDB, err := k.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (k *HTTPKernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "up", "cache": "disabled"}
	status := http.StatusOK
	if err := k.Ping(ctx); err != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	if cache.RDB != nil {
		checks["cache"] = "up"
		if err := cache.RDB.Ping(ctx).Err(); err != nil {
			checks["cache"] = "down"
		}
	}

	msg := "ok"
	if status != http.StatusOK {
		msg = "degraded"
	}
	response.Write(w, status, response.Envelope{Status: status, Message: msg, Data: checks})
}
