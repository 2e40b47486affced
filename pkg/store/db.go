package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coolbeans/lawabbrev/pkg/abbrev"
	"github.com/coolbeans/lawabbrev/pkg/driver"
	"github.com/coolbeans/lawabbrev/pkg/logging"
	"github.com/coolbeans/lawabbrev/pkg/position"
	"github.com/coolbeans/lawabbrev/pkg/scope"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	attempted   INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS citations (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	law_number      TEXT NOT NULL,
	citation_number TEXT NOT NULL,
	name            TEXT NOT NULL,
	scope_note      TEXT NOT NULL DEFAULT '',
	position        TEXT NOT NULL,
	label           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_citations_law ON citations(law_number);
CREATE INDEX IF NOT EXISTS idx_citations_name ON citations(name);

CREATE TABLE IF NOT EXISTS generic_abbreviations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	law_number    TEXT NOT NULL,
	name          TEXT NOT NULL,
	scope_notes   TEXT NOT NULL,
	span_start    INTEGER NOT NULL,
	span_end      INTEGER NOT NULL,
	article_label TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_generic_law ON generic_abbreviations(law_number);

CREATE TABLE IF NOT EXISTS fragment_errors (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	law_number TEXT NOT NULL,
	stage      TEXT NOT NULL,
	position   TEXT NOT NULL,
	text       TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fragment_errors_run ON fragment_errors(run_id);
`

// DB is a SQLite database of extraction runs.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	path   string
}

// Open opens or creates the database at path and makes sure the schema
// exists.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent saves.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("database opened", "path", path)
	return &DB{conn: conn, logger: logger, path: path}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", "error", err, "rollback_error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveRun stores the run summary and every document result of report in one
// transaction.
func (db *DB) SaveRun(ctx context.Context, report *driver.BatchReport) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, started_at, finished_at, attempted, succeeded, failed) VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID,
			report.StartedAt.Format(time.RFC3339Nano),
			report.FinishedAt.Format(time.RFC3339Nano),
			report.Attempted, report.Succeeded, report.Failed)
		if err != nil {
			return fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
		}

		for _, result := range report.Results {
			if result == nil {
				continue
			}
			if err := insertResult(ctx, tx, report.RunID, result); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveResult stores one document result under runID in one transaction.
func (db *DB) SaveResult(ctx context.Context, runID string, result *driver.Result) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertResult(ctx, tx, runID, result)
	})
}

func insertResult(ctx context.Context, tx *sql.Tx, runID string, result *driver.Result) error {
	for _, record := range result.Citations {
		positionJSON, err := json.Marshal(record.Position)
		if err != nil {
			return fmt.Errorf("failed to marshal position: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO citations (run_id, law_number, citation_number, name, scope_note, position, label)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, record.LawNumber, record.CitationNumber, record.Name, record.ScopeNote,
			string(positionJSON), record.Position.Label())
		if err != nil {
			return fmt.Errorf("failed to insert citation %q: %w", record.Name, err)
		}
	}

	for _, record := range result.Generic {
		notesJSON, err := json.Marshal(record.ScopeNotes)
		if err != nil {
			return fmt.Errorf("failed to marshal scope notes: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO generic_abbreviations (run_id, law_number, name, scope_notes, span_start, span_end, article_label)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, result.LawNumber, record.Name, string(notesJSON),
			record.Span.Start, record.Span.End, record.ArticleLabel)
		if err != nil {
			return fmt.Errorf("failed to insert generic abbreviation %q: %w", record.Name, err)
		}
	}

	for _, fragmentError := range result.Errors {
		positionJSON, err := json.Marshal(fragmentError.Position)
		if err != nil {
			return fmt.Errorf("failed to marshal position: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO fragment_errors (run_id, law_number, stage, position, text, message)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, fragmentError.LawNumber, string(fragmentError.Stage), string(positionJSON),
			fragmentError.Text, fragmentError.Message)
		if err != nil {
			return fmt.Errorf("failed to insert fragment error: %w", err)
		}
	}
	return nil
}

// CitationsByLaw returns every stored citation record defined in lawNumber,
// across runs, in insertion order.
func (db *DB) CitationsByLaw(ctx context.Context, lawNumber string) ([]abbrev.CitationRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT law_number, citation_number, name, scope_note, position
		 FROM citations WHERE law_number = ? ORDER BY id`, lawNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query citations: %w", err)
	}
	defer rows.Close()

	records := make([]abbrev.CitationRecord, 0)
	for rows.Next() {
		var record abbrev.CitationRecord
		var positionJSON string
		if err := rows.Scan(&record.LawNumber, &record.CitationNumber, &record.Name, &record.ScopeNote, &positionJSON); err != nil {
			return nil, fmt.Errorf("failed to scan citation: %w", err)
		}
		if err := json.Unmarshal([]byte(positionJSON), &record.Position); err != nil {
			return nil, fmt.Errorf("failed to decode position of %q: %w", record.Name, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GenericByLaw returns the generic abbreviations stored for lawNumber.
func (db *DB) GenericByLaw(ctx context.Context, lawNumber string) ([]abbrev.GenericRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, scope_notes, span_start, span_end, article_label
		 FROM generic_abbreviations WHERE law_number = ? ORDER BY id`, lawNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query generic abbreviations: %w", err)
	}
	defer rows.Close()

	records := make([]abbrev.GenericRecord, 0)
	for rows.Next() {
		var record abbrev.GenericRecord
		var notesJSON string
		if err := rows.Scan(&record.Name, &notesJSON, &record.Span.Start, &record.Span.End, &record.ArticleLabel); err != nil {
			return nil, fmt.Errorf("failed to scan generic abbreviation: %w", err)
		}
		var notes []scope.Note
		if err := json.Unmarshal([]byte(notesJSON), &notes); err != nil {
			return nil, fmt.Errorf("failed to decode scope notes of %q: %w", record.Name, err)
		}
		record.ScopeNotes = notes
		records = append(records, record)
	}
	return records, rows.Err()
}

// ErrorsByRun returns the fragment errors recorded during one run.
func (db *DB) ErrorsByRun(ctx context.Context, runID string) ([]driver.FragmentError, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT law_number, stage, position, text, message
		 FROM fragment_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragment errors: %w", err)
	}
	defer rows.Close()

	fragmentErrors := make([]driver.FragmentError, 0)
	for rows.Next() {
		var fragmentError driver.FragmentError
		var stage, positionJSON string
		if err := rows.Scan(&fragmentError.LawNumber, &stage, &positionJSON, &fragmentError.Text, &fragmentError.Message); err != nil {
			return nil, fmt.Errorf("failed to scan fragment error: %w", err)
		}
		var pos position.Position
		if err := json.Unmarshal([]byte(positionJSON), &pos); err != nil {
			return nil, fmt.Errorf("failed to decode fragment error position: %w", err)
		}
		fragmentError.Stage = driver.Stage(stage)
		fragmentError.Position = pos
		fragmentErrors = append(fragmentErrors, fragmentError)
	}
	return fragmentErrors, rows.Err()
}

// RunExists reports whether a run with id has been saved.
func (db *DB) RunExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query run: %w", err)
	}
	return count > 0, nil
}
