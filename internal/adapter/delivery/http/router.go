// Package http provides the HTTP delivery layer for the URL shortener service.
// It holds the chi router, the handlers and the request/response schemas.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/base62-shortener/docs"
	"github.com/vadimbarashkov/base62-shortener/internal/config"
	"github.com/vadimbarashkov/base62-shortener/pkg/middleware/metrics"
	"github.com/vadimbarashkov/base62-shortener/pkg/middleware/recoverer"
	"github.com/vadimbarashkov/base62-shortener/pkg/tracing"
)

// maxShortenBodyBytes leaves room for a 2048 character URL plus JSON
// framing and escaping.
const maxShortenBodyBytes = 16 << 10

type routerOptions struct {
	baseURL  string
	cors     config.CORS
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	tracing  bool
}

type Option func(*routerOptions)

// WithBaseURL sets the prefix used to build short_url values.
func WithBaseURL(baseURL string) Option {
	return func(o *routerOptions) {
		o.baseURL = baseURL
	}
}

func WithCORS(cfg config.CORS) Option {
	return func(o *routerOptions) {
		o.cors = cfg
	}
}

// WithMetrics records request metrics with m and exposes g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(o *routerOptions) {
		o.metrics = m
		o.gatherer = g
	}
}

// WithTracing names server spans after the matched route. The caller is
// expected to wrap the router with otelhttp.
func WithTracing() Option {
	return func(o *routerOptions) {
		o.tracing = true
	}
}

// NewRouter initializes and returns a chi router with middleware and routes
// for the URL shortener API.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, opts ...Option) *chi.Mux {
	o := routerOptions{
		baseURL: "http://localhost:8080",
		cors: config.CORS{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.cors.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           o.cors.MaxAge,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if o.tracing {
		r.Use(tracing.SpanName)
	}
	if o.metrics != nil {
		r.Use(o.metrics.Handler)
	}
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if _, err := w.Write(docs.Swagger); err != nil {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}
	})

	if o.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	validate := validator.New()
	h := newURLHandler(urlUseCase, validate, o.baseURL)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.Route("/shorten", func(r chi.Router) {
			r.With(middleware.RequestSize(maxShortenBodyBytes)).Post("/", h.shortenURL)
			r.Get("/{shortCode}", h.resolveShortCode)
		})
	})

	r.Get("/{shortCode}", h.redirect)

	return r
}
