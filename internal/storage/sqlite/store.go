package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nexacare/caresearch/internal/domain"
)

// Store is the relational store holding users, caregiver profiles, pricing
// and reviews. The search pipeline only reads from it.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", domain.ErrStore, err)
	}
	return nil
}

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		image TEXT,
		contact_number TEXT,
		role TEXT NOT NULL CHECK (role IN ('CUSTOMER', 'CAREGIVER')),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS addresses (
		user_id TEXT PRIMARY KEY,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		country TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS caregivers (
		user_id TEXT PRIMARY KEY,
		vector_id TEXT UNIQUE,
		experience INTEGER NOT NULL DEFAULT 0,
		specializations TEXT NOT NULL DEFAULT '[]',
		languages TEXT NOT NULL DEFAULT '[]',
		verification_status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK (verification_status IN ('PENDING', 'VERIFIED', 'REJECTED')),
		description TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_caregivers_vector ON caregivers(vector_id);

	CREATE TABLE IF NOT EXISTS charges (
		caregiver_id TEXT PRIMARY KEY,
		hourly_rate REAL,
		visit_fee REAL,
		currency TEXT NOT NULL DEFAULT 'USD',
		FOREIGN KEY (caregiver_id) REFERENCES caregivers(user_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		caregiver_id TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (caregiver_id) REFERENCES caregivers(user_id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_caregiver ON reviews(caregiver_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// encodeStringList stores a string slice as a JSON array column.
func encodeStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

// decodeStringList reads a JSON array column back into a slice.
func decodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return list, nil
}
