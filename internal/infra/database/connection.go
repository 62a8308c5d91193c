package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var DefaultPool = PoolConfig{
	MaxOpenConns:    10,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// NewDBConnection opens the pool and pings it once.
func NewDBConnection(ctx context.Context, connString string, pool PoolConfig) (*sql.DB, error) {
	// 1. sql.Open only validates the DSN
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	// 2. pool limits
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	// 3. first real round trip
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, classify(err)
	}

	return db, nil
}
