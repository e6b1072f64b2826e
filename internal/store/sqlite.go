package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fineprint-dev/fineprint/internal/schema"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore is the persistent ProfileStore. Profiles are stored as JSON
// documents keyed by user id; the embedded computed profile is persisted
// alongside the questionnaire so a read never needs to recompute.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id       TEXT PRIMARY KEY,
	questionnaire TEXT NOT NULL,
	computed      TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
`

// OpenSQLite opens (creating if needed) the profile database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, profile schema.StoredProfile) error {
	qJSON, err := json.Marshal(profile.Questionnaire)
	if err != nil {
		return fmt.Errorf("store: marshal questionnaire: %w", err)
	}
	cJSON, err := json.Marshal(profile.Computed)
	if err != nil {
		return fmt.Errorf("store: marshal computed profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, questionnaire, computed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			questionnaire = excluded.questionnaire,
			computed      = excluded.computed,
			updated_at    = excluded.updated_at`,
		profile.Questionnaire.UserID, string(qJSON), string(cJSON),
		profile.CreatedAt.Format(time.RFC3339Nano),
		profile.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: upsert profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*schema.StoredProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT questionnaire, computed, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID)

	var qJSON, cJSON, createdAt, updatedAt string
	if err := row.Scan(&qJSON, &cJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read profile: %w", err)
	}

	var profile schema.StoredProfile
	if err := json.Unmarshal([]byte(qJSON), &profile.Questionnaire); err != nil {
		return nil, fmt.Errorf("store: decode questionnaire: %w", err)
	}
	if err := json.Unmarshal([]byte(cJSON), &profile.Computed); err != nil {
		return nil, fmt.Errorf("store: decode computed profile: %w", err)
	}
	var err error
	if profile.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("store: parse created_at: %w", err)
	}
	if profile.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("store: parse updated_at: %w", err)
	}
	return &profile, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("store: delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: rows affected: %w", err)
	}
	return n > 0, nil
}
