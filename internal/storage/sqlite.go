package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding wizard sessions and finalized
// selections.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "campaignwiz.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any not yet run.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// --- Sessions ---

// SaveSession upserts a session snapshot.
func (s *Store) SaveSession(rec SessionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, step, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			step = excluded.step,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Step, rec.Payload,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetSession returns one persisted session snapshot.
func (s *Store) GetSession(id string) (SessionRecord, error) {
	var rec SessionRecord
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, step, payload, created_at, updated_at
		FROM sessions WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Step, &rec.Payload, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return SessionRecord{}, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return SessionRecord{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return SessionRecord{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return rec, nil
}

// ListSessions returns persisted sessions, most recently updated first.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, step, payload, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.ID, &rec.Step, &rec.Payload, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// --- Finalized records ---

// SaveFinalized replaces the finalized records of the given kind for a
// session. Finalize semantics are overwrite, not append.
func (s *Store) SaveFinalized(sessionID, kind string, records []FinalizedRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning finalize transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM finalized_records WHERE session_id = ? AND kind = ?`, sessionID, kind); err != nil {
		return fmt.Errorf("clearing finalized %s records: %w", kind, err)
	}

	for _, rec := range records {
		if _, err := tx.Exec(`
			INSERT INTO finalized_records (id, session_id, kind, record_id, name, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, sessionID, kind, rec.RecordID, rec.Name, rec.Payload,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting finalized record %s: %w", rec.RecordID, err)
		}
	}
	return tx.Commit()
}

// ListFinalized returns the finalized records of one kind for a session.
func (s *Store) ListFinalized(sessionID, kind string) ([]FinalizedRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, kind, record_id, name, payload, created_at
		FROM finalized_records WHERE session_id = ? AND kind = ?
		ORDER BY created_at ASC, record_id ASC`, sessionID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FinalizedRecord
	for rows.Next() {
		var rec FinalizedRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Kind, &rec.RecordID, &rec.Name, &rec.Payload, &createdAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
