package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/interviewsim/internal/model"
)

var _ model.UsageRecorder = (*PostgresStore)(nil)

// PostgresStore appends usage records to a PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the usage_log table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS usage_log (
		id               BIGSERIAL PRIMARY KEY,
		timestamp        TIMESTAMPTZ NOT NULL,
		"user"           TEXT NOT NULL,
		action           TEXT NOT NULL,
		painpoint        TEXT NOT NULL,
		customer_profile TEXT NOT NULL
	)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating usage_log table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Record appends one row.
func (s *PostgresStore) Record(ctx context.Context, rec model.UsageRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO usage_log (timestamp, "user", action, painpoint, customer_profile) VALUES ($1, $2, $3, $4, $5)`,
		rec.Timestamp, rec.User, rec.Action, rec.PainPoint, rec.CustomerProfile,
	)
	if err != nil {
		return fmt.Errorf("recording usage %q: %w", rec.Action, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]model.UsageRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT timestamp, "user", action, painpoint, customer_profile FROM usage_log ORDER BY id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying usage log: %w", err)
	}
	defer rows.Close()

	var records []model.UsageRecord
	for rows.Next() {
		var rec model.UsageRecord
		if err := rows.Scan(&rec.Timestamp, &rec.User, &rec.Action, &rec.PainPoint, &rec.CustomerProfile); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage log: %w", err)
	}
	return records, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
