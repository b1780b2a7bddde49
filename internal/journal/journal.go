// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a local, append-only log of submission attempts in
// a SQLite database. It is a client-side audit trail: what was submitted,
// when, and how it resolved. It never mirrors or caches server records;
// the remote result store stays the sole source of truth for those.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evalsheet/pkg/types"
)

const dbFile = "journal.db"

// EntryStatus classifies how a submission attempt resolved.
type EntryStatus string

const (
	// StatusSucceeded means the pipeline produced an evaluation result.
	StatusSucceeded EntryStatus = "succeeded"

	// StatusFailed means the upload or evaluate step failed.
	StatusFailed EntryStatus = "failed"
)

// Entry is one recorded submission attempt.
type Entry struct {
	// ID is the local row identifier.
	ID int64

	// SubmittedAt is when the attempt was recorded.
	SubmittedAt time.Time

	// FileName is the local name of the submitted answer sheet.
	FileName string

	// ModelAnswerID is the model answer the sheet was scored against.
	ModelAnswerID int

	// Status is how the attempt resolved.
	Status EntryStatus

	// Score is the semantic score for succeeded attempts. Meaningful only
	// when Scored is true.
	Score float64

	// Scored reports whether the server supplied a usable score.
	Scored bool

	// Reason is the failure reason for failed attempts.
	Reason string
}

// Journal is the submission log. Open one per process.
type Journal struct {
	db         *sql.DB
	maxEntries int
}

// Open opens or creates the journal database at cfg.Dir/journal.db and
// creates the schema if it does not exist.
func Open(cfg types.JournalConfig) (*Journal, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 50
	}

	j := &Journal{db: db, maxEntries: maxEntries}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createSchema() error {
	_, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		submitted_at TEXT NOT NULL,
		file_name TEXT NOT NULL,
		model_answer_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		score REAL,
		scored INTEGER NOT NULL DEFAULT 0,
		reason TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Record appends one submission attempt. A zero SubmittedAt is filled with
// the current time.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO submissions (submitted_at, file_name, model_answer_id, status, score, scored, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SubmittedAt.Format(time.RFC3339), e.FileName, e.ModelAnswerID,
		string(e.Status), e.Score, e.Scored, e.Reason)
	if err != nil {
		return fmt.Errorf("recording submission: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first. When limit is 0
// the configured default applies.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = j.maxEntries
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, submitted_at, file_name, model_answer_id, status, score, scored, reason
		 FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var submittedAt, status string
		if err := rows.Scan(&e.ID, &submittedAt, &e.FileName, &e.ModelAnswerID,
			&status, &e.Score, &e.Scored, &e.Reason); err != nil {
			return nil, fmt.Errorf("scanning submission row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, submittedAt); err == nil {
			e.SubmittedAt = t
		}
		e.Status = EntryStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
