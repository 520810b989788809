// Package sqlite implements the checkpoint store on SQLite.
//
// A checkpoint is the write-ahead snapshot of an interrupted enumeration
// walk. The store keeps at most one checkpoint: saving replaces any
// previous one, so a resume always picks up the most recent position.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/zenpurge-cli/internal/adapters/driven/checkpoint/sqlite/migrations"
	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CheckpointStore = (*Store)(nil)

// Store is a SQLite-backed checkpoint store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a checkpoint store under the specified data directory.
// If dataDir is empty, defaults to ~/.zenpurge/data/checkpoints.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".zenpurge", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "checkpoints.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save persists cp, replacing any previously saved checkpoint.
func (s *Store) Save(ctx context.Context, cp domain.Checkpoint) error {
	tickets, err := json.Marshal(cp.Tickets)
	if err != nil {
		return fmt.Errorf("encoding tickets: %w", err)
	}
	seen, err := json.Marshal(cp.SeenIDs)
	if err != nil {
		return fmt.Errorf("encoding seen ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checkpoints"); err != nil {
		return fmt.Errorf("removing previous checkpoint: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints (id, version, flavor, cursor, tickets, seen_ids, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), cp.Version, cp.Flavor, cp.Cursor,
		string(tickets), string(seen), cp.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting checkpoint: %w", err)
	}

	return tx.Commit()
}

// Load returns the saved checkpoint, or domain.ErrNoCheckpoint when none
// has been saved.
func (s *Store) Load(ctx context.Context) (*domain.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, flavor, cursor, tickets, seen_ids, saved_at
		FROM checkpoints
		ORDER BY saved_at DESC
		LIMIT 1
	`)

	var cp domain.Checkpoint
	var tickets, seen, savedAt string
	err := row.Scan(&cp.Version, &cp.Flavor, &cp.Cursor, &tickets, &seen, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	if cp.Version > domain.CheckpointVersion {
		return nil, fmt.Errorf("checkpoint version %d is newer than supported %d",
			cp.Version, domain.CheckpointVersion)
	}
	if err := json.Unmarshal([]byte(tickets), &cp.Tickets); err != nil {
		return nil, fmt.Errorf("decoding tickets: %w", err)
	}
	if err := json.Unmarshal([]byte(seen), &cp.SeenIDs); err != nil {
		return nil, fmt.Errorf("decoding seen ids: %w", err)
	}
	if cp.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return nil, fmt.Errorf("decoding saved_at: %w", err)
	}

	return &cp, nil
}

// Clear removes any saved checkpoint.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM checkpoints"); err != nil {
		return fmt.Errorf("clearing checkpoints: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		version, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])
		if err != nil {
			return fmt.Errorf("parsing migration version from %s: %w", name, err)
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
