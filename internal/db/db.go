package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Pool holds the connection pool limits. The dispatcher runs tasks one at a
// time, so a handful of connections is plenty.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxIdleTime time.Duration
}

// Connect opens a postgres pool for databaseURL (postgres://...) and verifies it
// with a ping bounded by a 5s timeout.
func Connect(ctx context.Context, databaseURL string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	Configure(db, pool)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Configure applies pool to db. Zero fields keep database/sql's defaults,
// except MaxIdleTime which defaults to 5 minutes.
func Configure(db *sql.DB, pool Pool) {
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	idle := pool.MaxIdleTime
	if idle == 0 {
		idle = 5 * time.Minute
	}
	db.SetConnMaxIdleTime(idle)
}
