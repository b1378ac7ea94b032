package database

import (
	"context"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx driver with database/sql
	"github.com/jmoiron/sqlx"
)

// New opens a PostgreSQL pool through the pgx stdlib driver and pings
// it with a short timeout so startup fails fast on a bad DSN.
func New(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
