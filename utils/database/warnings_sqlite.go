package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discord-warn-bot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const warningsDocumentKey = "warnings"

// SQLiteStore keeps the same document as JSONStore in a single sqlite row and
// appends a row to persist_journal for every save.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// PersistEntry is one row of the save journal.
type PersistEntry struct {
	ID          int64  `db:"id" json:"id"`
	SavedAt     int64  `db:"saved_at" json:"saved_at"`
	Bytes       int    `db:"bytes" json:"bytes"`
	Guilds      int    `db:"guilds" json:"guilds"`
	ActiveMutes int    `db:"active_mutes" json:"active_mutes"`
	Checksum    string `db:"checksum" json:"checksum"`
}

// InitSQLiteStore opens the database and ensures the tables exist.
func InitSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite allows one writer; a single connection keeps saves ordered.
	db.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS persist_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			guilds INTEGER NOT NULL,
			active_mutes INTEGER NOT NULL,
			checksum TEXT NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load() (*model.WarningData, error) {
	var body string
	err := s.db.Get(&body, "SELECT body FROM documents WHERE name = ?", warningsDocumentKey)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewWarningData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read warnings document: %w", err)
	}
	data, dropped, err := decodeDocument([]byte(body))
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		// Keep the original body; the next save rewrites it without the dropped records.
		now := s.now().Unix()
		backup := fmt.Sprintf("%s.partial-%d", warningsDocumentKey, now)
		if _, err := s.db.Exec("INSERT OR REPLACE INTO documents (name, body, updated_at) VALUES (?, ?, ?)", backup, body, now); err != nil {
			log.Error().Err(err).Str("name", backup).Msg("Failed to back up warnings document with dropped records")
		} else {
			log.Warn().Int("dropped", dropped).Str("backup", backup).Msg("Loaded warnings document with undecodable records")
		}
	}
	return data, nil
}

func (s *SQLiteStore) Save(data *model.WarningData) error {
	out, err := encodeDocument(data)
	if err != nil {
		return err
	}
	if data == nil {
		data = model.NewWarningData()
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	_, err = tx.Exec(`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		warningsDocumentKey, string(out), now)
	if err != nil {
		return fmt.Errorf("failed to write warnings document: %w", err)
	}

	entry := PersistEntry{
		SavedAt:     now,
		Bytes:       len(out),
		Guilds:      len(data.Warnings),
		ActiveMutes: len(data.ActiveMutes),
		Checksum:    checksum(out),
	}
	_, err = tx.NamedExec(`INSERT INTO persist_journal (saved_at, bytes, guilds, active_mutes, checksum)
		VALUES (:saved_at, :bytes, :guilds, :active_mutes, :checksum)`, entry)
	if err != nil {
		return fmt.Errorf("failed to insert persist journal entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit warnings document: %w", err)
	}
	return nil
}

// RecentSaves returns the latest journal rows, newest first.
func (s *SQLiteStore) RecentSaves(limit int) ([]PersistEntry, error) {
	var entries []PersistEntry
	err := s.db.Select(&entries, "SELECT * FROM persist_journal ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read persist journal: %w", err)
	}
	return entries, nil
}
