// Package postgres opens pooled sqlx connections over the pgx driver and
// applies schema migrations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
	defaultConnectAttempts = 1
	defaultRetryInterval   = time.Second
)

type options struct {
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
	maxIdleConns    int
	maxOpenConns    int
	connectAttempts int
	retryInterval   time.Duration
}

type Option func(*options)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(o *options) {
		o.connMaxIdleTime = d
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *options) {
		o.connMaxLifetime = d
	}
}

func WithMaxIdleConns(n int) Option {
	return func(o *options) {
		o.maxIdleConns = n
	}
}

func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		o.maxOpenConns = n
	}
}

// WithConnectAttempts retries the initial connection up to n times, waiting
// interval between attempts. Useful when the database starts alongside the
// service.
func WithConnectAttempts(n int, interval time.Duration) Option {
	return func(o *options) {
		o.connectAttempts = n
		o.retryInterval = interval
	}
}

func New(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "postgres.New"

	o := options{
		connMaxIdleTime: defaultConnMaxIdleTime,
		connMaxLifetime: defaultConnMaxLifetime,
		maxIdleConns:    defaultMaxIdleConns,
		maxOpenConns:    defaultMaxOpenConns,
		connectAttempts: defaultConnectAttempts,
		retryInterval:   defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.connectAttempts < 1 {
		o.connectAttempts = 1
	}

	var (
		db  *sqlx.DB
		err error
	)
	for attempt := 1; ; attempt++ {
		db, err = sqlx.ConnectContext(ctx, "pgx", dsn)
		if err == nil {
			break
		}
		if attempt == o.connectAttempts {
			return nil, fmt.Errorf("%s: failed to connect to database after %d attempts: %w", op, attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(o.retryInterval):
		}
	}

	db.SetConnMaxIdleTime(o.connMaxIdleTime)
	db.SetConnMaxLifetime(o.connMaxLifetime)
	db.SetMaxIdleConns(o.maxIdleConns)
	db.SetMaxOpenConns(o.maxOpenConns)

	return db, nil
}
