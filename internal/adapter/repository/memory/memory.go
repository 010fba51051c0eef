// Package memory implements a process-local URL registry. Records live only
// as long as the process and are not shared between instances.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

type URLRepository struct {
	mu    sync.RWMutex
	byURL map[string]int64
	// records[i] holds the record with id i+1.
	records []entity.URL
	now     func() time.Time
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		byURL: make(map[string]int64),
		now:   time.Now,
	}
}

// GetOrCreate holds the write lock for the whole lookup-or-insert, so
// concurrent calls for one URL always observe a single id.
func (r *URLRepository) GetOrCreate(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.GetOrCreate"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrRegistryUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if id, ok := r.byURL[originalURL]; ok {
		rec := &r.records[id-1]
		rec.UpdatedAt = now
		url := *rec
		return &url, nil
	}

	id := int64(len(r.records)) + 1
	r.records = append(r.records, entity.URL{
		ID:          id,
		OriginalURL: originalURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	r.byURL[originalURL] = id

	url := r.records[id-1]
	return &url, nil
}

func (r *URLRepository) GetByID(ctx context.Context, id int64) (*entity.URL, error) {
	const op = "adapter.repository.memory.URLRepository.GetByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrRegistryUnavailable, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 1 || id > int64(len(r.records)) {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	url := r.records[id-1]
	return &url, nil
}

// Len returns the number of stored records.
func (r *URLRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}
