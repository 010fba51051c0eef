package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/vadimbarashkov/base62-shortener/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/base62-shortener/internal/codec"
	"github.com/vadimbarashkov/base62-shortener/internal/config"
	"github.com/vadimbarashkov/base62-shortener/internal/usecase"
	"github.com/vadimbarashkov/base62-shortener/pkg/middleware/metrics"
)

func setupServer(t *testing.T) *httpexpect.Expect {
	t.Helper()

	logger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})
	uc := usecase.New(memory.NewURLRepository(), codec.Base62{})

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	router := NewRouter(logger, uc,
		WithBaseURL("https://sho.rt"),
		WithCORS(config.CORS{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 60}),
		WithMetrics(m, reg),
		WithTracing(),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return httpexpect.Default(t, server.URL)
}

func TestRouter_EndToEnd(t *testing.T) {
	e := setupServer(t)

	originalURL := "https://example.com/" + gonanoid.Must()

	first := e.POST("/api/v1/shorten").
		WithJSON(map[string]string{"url": originalURL}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		Value("data").Object()

	shortCode := first.Value("short_code").String().Raw()
	first.HasValue("id", 1)
	first.HasValue("short_code", "1")
	first.HasValue("short_url", "https://sho.rt/1")

	t.Run("shortening is idempotent", func(t *testing.T) {
		e.POST("/api/v1/shorten").
			WithJSON(map[string]string{"url": originalURL}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object().
			Value("data").Object().
			HasValue("short_code", shortCode)
	})

	t.Run("distinct urls get distinct codes", func(t *testing.T) {
		e.POST("/api/v1/shorten").
			WithJSON(map[string]string{"url": "https://example.com/" + gonanoid.Must()}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object().
			Value("data").Object().
			HasValue("short_code", "2")
	})

	t.Run("resolve", func(t *testing.T) {
		e.GET("/api/v1/shorten/{shortCode}", shortCode).
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			Value("data").Object().
			HasValue("url", originalURL)
	})

	t.Run("redirect", func(t *testing.T) {
		e.GET("/{shortCode}", shortCode).
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusMovedPermanently).
			Header("Location").IsEqual(originalURL)
	})

	t.Run("unknown code", func(t *testing.T) {
		e.GET("/{shortCode}", "zzzz").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound)
	})

	t.Run("invalid code", func(t *testing.T) {
		for _, code := range []string{"0abc", "ab_cd", "zzzzzzzzzzzz"} {
			e.GET("/{shortCode}", code).
				WithRedirectPolicy(httpexpect.DontFollowRedirects).
				Expect().
				Status(http.StatusBadRequest).
				JSON().Object().
				HasValue("status", "error")
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		e.OPTIONS("/api/v1/shorten").
			WithHeader("Origin", "https://app.example.com").
			WithHeader("Access-Control-Request-Method", http.MethodPost).
			Expect().
			Header("Access-Control-Allow-Origin").IsEqual("https://app.example.com")
	})

	t.Run("metrics", func(t *testing.T) {
		e.GET("/metrics").
			Expect().
			Status(http.StatusOK).
			Body().
			Contains(`http_requests_total{method="POST"`).
			Contains(`route="/{shortCode}",status="301"`)
	})
}
