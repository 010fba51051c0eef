// Package postgres implements the URL registry on top of PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
)

const undefinedTableErrCode = "42P01"

func isUndefinedTableError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == undefinedTableErrCode
}

type urlDB struct {
	ID          int64     `db:"id"`
	OriginalURL string    `db:"original_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (u *urlDB) toEntity() *entity.URL {
	return &entity.URL{
		ID:          u.ID,
		OriginalURL: u.OriginalURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// GetOrCreate inserts originalURL or, when it is already stored, touches
// updated_at of the existing row. Both branches run as one statement, so
// concurrent calls for the same URL are serialized by the unique index on
// original_url and observe the same id.
func (r *URLRepository) GetOrCreate(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.GetOrCreate"
	const query = `INSERT INTO urls(original_url) VALUES ($1)
		ON CONFLICT (original_url) DO UPDATE SET updated_at = NOW()
		RETURNING id, original_url, created_at, updated_at`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, originalURL); err != nil {
		if isUndefinedTableError(err) {
			return nil, fmt.Errorf("%s: %w: migrations not applied: %w", op, entity.ErrRegistryUnavailable, err)
		}

		return nil, fmt.Errorf("%s: %w: failed to upsert into urls table: %w", op, entity.ErrRegistryUnavailable, err)
	}

	return url.toEntity(), nil
}

func (r *URLRepository) GetByID(ctx context.Context, id int64) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.GetByID"
	const query = `SELECT id, original_url, created_at, updated_at FROM urls WHERE id = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: %w: failed to get row from urls table: %w", op, entity.ErrRegistryUnavailable, err)
	}

	return url.toEntity(), nil
}
