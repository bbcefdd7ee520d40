package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// Options configures the store connection pool.
type Options struct {
	URL      string
	Key      string
	MaxConns int32
	Timeout  time.Duration
}

// New creates the store connection pool. The pool is created once by the
// binary and handed to every repository. Missing URL or key yields a
// *shared.NotConfiguredError without dialing.
func New(ctx context.Context, opts Options) (*pgxpool.Pool, error) {
	var missing []string
	if opts.URL == "" {
		missing = append(missing, "STORE_URL")
	}
	if opts.Key == "" {
		missing = append(missing, "STORE_KEY")
	}
	if len(missing) > 0 {
		return nil, &shared.NotConfiguredError{Missing: missing}
	}

	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("platform/db: parse config: %w", err)
	}
	config.ConnConfig.Password = opts.Key
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.Timeout > 0 {
		config.ConnConfig.ConnectTimeout = opts.Timeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("platform/db: new pool: %w", err)
	}

	pingCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}

	return pool, nil
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
