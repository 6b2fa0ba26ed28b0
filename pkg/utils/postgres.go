package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgxDriver = "pgx"

// PostgresPool sizes the database/sql pool. Zero fields take the defaults below;
// the only writer is the reconcile audit log, one row per webhook.
type PostgresPool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

var defaultPostgresPool = PostgresPool{MaxOpen: 4, MaxIdle: 2, MaxLifetime: 30 * time.Minute}

func (p PostgresPool) orDefault() PostgresPool {
	if p.MaxOpen <= 0 {
		p.MaxOpen = defaultPostgresPool.MaxOpen
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = defaultPostgresPool.MaxIdle
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = defaultPostgresPool.MaxLifetime
	}
	return p
}

// OpenPostgres opens dsn with the pgx stdlib driver and pings it within timeout.
// dsn must not be logged; it contains secrets.
func OpenPostgres(ctx context.Context, dsn string, pool PostgresPool, timeout time.Duration) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool = pool.orDefault()

	db, err := sql.Open(pgxDriver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	if err := PingPostgres(ctx, db, timeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// PingPostgres checks db within timeout. /healthz uses it when the audit store is on.
func PingPostgres(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}
