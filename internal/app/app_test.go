package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimbarashkov/base62-shortener/internal/adapter/repository/cache"
	"github.com/vadimbarashkov/base62-shortener/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/base62-shortener/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Env:     config.EnvDev,
		BaseURL: "http://localhost",
		Storage: config.StorageMemory,
		HTTPServer: config.HTTPServer{
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		LocalCache: config.LocalCache{
			Enabled:  true,
			MaxItems: 100,
			TTL:      time.Minute,
		},
		Log: config.Log{Level: "error"},
	}
}

func TestNewURLRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory with local cache", func(t *testing.T) {
		repo, closeRepo, err := newURLRepository(context.Background(), memoryConfig(), logger)
		require.NoError(t, err)
		t.Cleanup(closeRepo)

		assert.IsType(t, &cache.URLRepository{}, repo)

		url, err := repo.GetOrCreate(context.Background(), "https://example.com")
		require.NoError(t, err)

		got, err := repo.GetByID(context.Background(), url.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})

	t.Run("memory without caches", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.LocalCache.Enabled = false

		repo, closeRepo, err := newURLRepository(context.Background(), cfg, logger)
		require.NoError(t, err)
		t.Cleanup(closeRepo)

		assert.IsType(t, &memory.URLRepository{}, repo)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Redis = config.Redis{Enabled: true, Addr: "127.0.0.1:1", TTL: time.Minute}

		repo, closeRepo, err := newURLRepository(context.Background(), cfg, logger)

		assert.Error(t, err)
		assert.Nil(t, repo)
		assert.Nil(t, closeRepo)
	})
}

func TestRun(t *testing.T) {
	t.Run("stops on context cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		assert.NoError(t, Run(ctx, memoryConfig()))
	})

	t.Run("unknown codec", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Codec.Kind = "rot13"

		assert.Error(t, Run(context.Background(), cfg))
	})
}
