package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

func TestURLRepository_GetOrCreate(t *testing.T) {
	t.Run("assigns increasing ids from one", func(t *testing.T) {
		repo := NewURLRepository()

		a, err := repo.GetOrCreate(context.Background(), "https://example.com/a")
		require.NoError(t, err)
		b, err := repo.GetOrCreate(context.Background(), "https://example.com/b")
		require.NoError(t, err)

		assert.Equal(t, int64(1), a.ID)
		assert.Equal(t, int64(2), b.ID)
		assert.Equal(t, 2, repo.Len())
	})

	t.Run("repeat submission touches updated at", func(t *testing.T) {
		repo := NewURLRepository()
		clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return clock }

		first, err := repo.GetOrCreate(context.Background(), "https://example.com")
		require.NoError(t, err)

		clock = clock.Add(time.Hour)

		second, err := repo.GetOrCreate(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.Equal(t, clock, second.UpdatedAt)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		repo := NewURLRepository()

		url, err := repo.GetOrCreate(context.Background(), "https://example.com")
		require.NoError(t, err)
		url.OriginalURL = "https://mutated.example.com"

		stored, err := repo.GetByID(context.Background(), url.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", stored.OriginalURL)
	})

	t.Run("concurrent submissions converge", func(t *testing.T) {
		repo := NewURLRepository()

		const workers = 64
		ids := make(chan int64, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				url, err := repo.GetOrCreate(context.Background(), "https://example.com/race")
				if assert.NoError(t, err) {
					ids <- url.ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		for id := range ids {
			assert.Equal(t, int64(1), id)
		}
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("canceled context", func(t *testing.T) {
		repo := NewURLRepository()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		url, err := repo.GetOrCreate(ctx, "https://example.com")

		assert.ErrorIs(t, err, entity.ErrRegistryUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, url)
		assert.Zero(t, repo.Len())
	})
}

func TestURLRepository_GetByID(t *testing.T) {
	repo := NewURLRepository()
	_, err := repo.GetOrCreate(context.Background(), "https://example.com")
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		url, err := repo.GetByID(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, "https://example.com", url.OriginalURL)
	})

	for _, id := range []int64{0, -1, 2, 1 << 40} {
		t.Run("not found", func(t *testing.T) {
			url, err := repo.GetByID(context.Background(), id)

			assert.ErrorIs(t, err, entity.ErrURLNotFound)
			assert.Nil(t, url)
		})
	}
}
