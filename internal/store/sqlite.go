package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/amishk599/interviewsim/internal/model"
)

var _ model.UsageRecorder = (*SQLiteStore)(nil)

// SQLiteStore appends usage records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// usage_log table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS usage_log (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp        DATETIME NOT NULL,
		"user"           TEXT NOT NULL,
		action           TEXT NOT NULL,
		painpoint        TEXT NOT NULL,
		customer_profile TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating usage_log table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record appends one row. Rows are never updated or deleted.
func (s *SQLiteStore) Record(ctx context.Context, rec model.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_log (timestamp, "user", action, painpoint, customer_profile) VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp.UTC(), rec.User, rec.Action, rec.PainPoint, rec.CustomerProfile,
	)
	if err != nil {
		return fmt.Errorf("recording usage %q: %w", rec.Action, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]model.UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, "user", action, painpoint, customer_profile FROM usage_log ORDER BY id DESC LIMIT ?`,
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

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
