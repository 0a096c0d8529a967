package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pool and checks the database is reachable.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
    id                    INTEGER PRIMARY KEY,
    name                  TEXT NOT NULL,
    branch                TEXT NOT NULL DEFAULT '',
    business_type         TEXT NOT NULL,
    estimated_bags        INTEGER NOT NULL,
    price_per_bag         DOUBLE PRECISION NOT NULL,
    rating                DOUBLE PRECISION NOT NULL,
    max_bags_per_customer INTEGER NOT NULL,
    location              GEOGRAPHY(POINT, 4326) NOT NULL
);

CREATE TABLE IF NOT EXISTS reservations (
    run_id           TEXT NOT NULL,
    strategy         TEXT NOT NULL,
    seed             BIGINT NOT NULL,
    day              INTEGER NOT NULL,
    reservation_id   INTEGER NOT NULL,
    customer_id      INTEGER NOT NULL,
    restaurant_id    INTEGER NOT NULL,
    reservation_time TEXT NOT NULL,
    status           TEXT NOT NULL,
    bags_received    INTEGER NOT NULL,
    PRIMARY KEY (run_id, day, reservation_id)
);
`

// Migrate creates the tables the repositories need.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}
