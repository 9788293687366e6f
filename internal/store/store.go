package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/docdetect/internal/detection"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	job_id     TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	confidence REAL    NOT NULL,
	properties TEXT    NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (job_id, seq)
)`

// Store persists job results in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveTracks replaces the stored tracks of a job.
func (s *Store) SaveTracks(ctx context.Context, jobID string, tracks []detection.Track) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("clear tracks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tracks (job_id, seq, confidence, properties) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tracks {
		props, err := json.Marshal(t.Properties)
		if err != nil {
			return fmt.Errorf("encode track %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, jobID, i, t.Confidence, string(props)); err != nil {
			return fmt.Errorf("insert track %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Tracks returns a job's tracks in emission order. A job with no stored
// tracks yields an empty slice.
func (s *Store) Tracks(ctx context.Context, jobID string) ([]detection.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT confidence, properties FROM tracks WHERE job_id = ? ORDER BY seq`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	out := []detection.Track{}
	for rows.Next() {
		var conf float64
		var props string
		if err := rows.Scan(&conf, &props); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		t := detection.Track{Confidence: float32(conf)}
		if err := json.Unmarshal([]byte(props), &t.Properties); err != nil {
			return nil, fmt.Errorf("decode track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteJob removes a job's tracks and reports how many were deleted.
func (s *Store) DeleteJob(ctx context.Context, jobID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE job_id = ?`, jobID)
	if err != nil {
		return 0, fmt.Errorf("delete tracks: %w", err)
	}
	return res.RowsAffected()
}
