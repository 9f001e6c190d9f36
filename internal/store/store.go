// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/blindcode/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// State keys in kiosk_state.
const (
	keyRegistration = "registration"
	keyCurrentIndex = "current_index"
	keyResults      = "results"
)

// Store wraps SQLite access for kiosk state and attempt history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kiosk_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			registration_id TEXT NOT NULL,
			challenge TEXT NOT NULL,
			attempt INTEGER NOT NULL,
			language TEXT NOT NULL,
			success INTEGER NOT NULL,
			output TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_registration ON attempts(registration_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRegistration stores a new participant and clears the previous progress and results.
func (s *Store) SaveRegistration(ctx context.Context, reg model.Registration) (err error) {
	value, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to encode registration: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM kiosk_state WHERE key IN (?, ?)`, keyCurrentIndex, keyResults); err != nil {
		return err
	}
	if err = putState(ctx, tx, keyRegistration, value, s.now()); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadRegistration returns the current participant; ok is false when nobody registered.
func (s *Store) LoadRegistration(ctx context.Context) (model.Registration, bool, error) {
	var reg model.Registration
	ok, err := s.getState(ctx, keyRegistration, &reg)
	return reg, ok, err
}

// SaveIndex stores the current challenge index.
func (s *Store) SaveIndex(ctx context.Context, index int) error {
	value, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return putState(ctx, s.db, keyCurrentIndex, value, s.now())
}

// LoadIndex returns the stored challenge index.
func (s *Store) LoadIndex(ctx context.Context) (int, bool, error) {
	var index int
	ok, err := s.getState(ctx, keyCurrentIndex, &index)
	return index, ok, err
}

// SaveResults stores the results ledger.
func (s *Store) SaveResults(ctx context.Context, results []model.ChallengeResult) error {
	if results == nil {
		results = []model.ChallengeResult{}
	}
	value, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return putState(ctx, s.db, keyResults, value, s.now())
}

// LoadResults returns the stored results ledger.
func (s *Store) LoadResults(ctx context.Context) ([]model.ChallengeResult, error) {
	var results []model.ChallengeResult
	if _, err := s.getState(ctx, keyResults, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// InsertAttempt appends a submission to the history and returns its id.
func (s *Store) InsertAttempt(ctx context.Context, a model.Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	success := 0
	if a.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, registration_id, challenge, attempt, language, success, output, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.RegistrationID,
		a.Challenge,
		a.Attempt,
		string(a.Language),
		success,
		a.Output,
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// ListAttempts returns the history for a participant, oldest first.
func (s *Store) ListAttempts(ctx context.Context, registrationID string) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, registration_id, challenge, attempt, language, success, output, created_at
		 FROM attempts
		 WHERE registration_id = ?
		 ORDER BY created_at ASC, attempt ASC`, registrationID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var lang, createdAt string
		var success int
		if err := rows.Scan(&a.ID, &a.RegistrationID, &a.Challenge, &a.Attempt, &lang, &success, &a.Output, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		a.Language = model.Language(lang)
		a.Success = success != 0
		a.CreatedAt = parsed
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// Clear removes the registration, progress, results and attempt history.
func (s *Store) Clear(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM kiosk_state`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM attempts`); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putState(ctx context.Context, db execer, key string, value []byte, now time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO kiosk_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), now.Format(time.RFC3339Nano))
	return err
}

func (s *Store) getState(ctx context.Context, key string, out any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kiosk_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
