package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/agenda/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/agenda/internal/core/domain"
)

// DBFile is the metadata database file name inside the data directory.
const DBFile = "metadata.db"

// pragmas keep readers unblocked while an ingest writes.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Store is the SQLite-backed chunk metadata store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens metadata.db in dataDir, ~/.agenda/data when empty, and
// brings its schema up to date.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		dataDir = filepath.Join(home, ".agenda", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := upgrade(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

type migration struct {
	version int
	file    string
}

// pending lists the NNN_name.up.sql files newer than applied, oldest first.
func pending(fsys fs.FS, applied int) ([]migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var out []migration
	for _, file := range files {
		prefix, _, _ := strings.Cut(file, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix", file)
		}
		if version > applied {
			out = append(out, migration{version: version, file: file})
		}
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// upgrade applies pending migrations, each in its own transaction together
// with its schema_migrations row.
func upgrade(db *sql.DB, fsys fs.FS) error {
	const ledger = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(ledger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var applied int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&applied); err != nil {
		return fmt.Errorf("migrate: read version: %w", err)
	}

	todo, err := pending(fsys, applied)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, m := range todo {
		ddl, err := fs.ReadFile(fsys, m.file)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", m.file, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate %s: %w", m.file, err)
		}
		if _, err := tx.Exec(string(ddl)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate %s: %w", m.file, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate %s: %w", m.file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate %s: %w", m.file, err)
		}
	}
	return nil
}

// ReplaceSnapshot stores chunks as the active snapshot in one transaction.
// Chunk i is stored at position i regardless of its Position field.
func (s *Store) ReplaceSnapshot(ctx context.Context, info domain.SnapshotInfo, chunks []domain.Chunk) error {
	if info.BuildID == "" {
		return fmt.Errorf("%w: empty build id", domain.ErrInvalidInput)
	}
	if info.Count != len(chunks) {
		return fmt.Errorf("%w: snapshot count %d does not match %d chunks",
			domain.ErrInvalidInput, info.Count, len(chunks))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE snapshots SET active = 0"); err != nil {
		return fmt.Errorf("deactivating snapshots: %w", err)
	}

	builtAt := info.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (build_id, count, dimensions, built_at, active)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(build_id) DO UPDATE SET
			count = excluded.count,
			dimensions = excluded.dimensions,
			built_at = excluded.built_at,
			active = 1
	`, info.BuildID, info.Count, info.Dimensions, builtAt.UTC())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, build_id, event_id, title, dates_text, geo_text,
			vectorise_text, chunk, full_vectorise_text, context_chunk)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		_, err := stmt.ExecContext(ctx, i, info.BuildID, c.EventID, c.Title, c.DatesText, c.GeoText,
			c.VectoriseText, c.Text, c.FullVectoriseText, c.ContextChunk)
		if err != nil {
			return fmt.Errorf("saving chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ActiveSnapshot returns the active snapshot and its chunks in position order.
// Returns domain.ErrNotFound when nothing has been stored yet.
func (s *Store) ActiveSnapshot(ctx context.Context) (domain.SnapshotInfo, []domain.Chunk, error) {
	var info domain.SnapshotInfo
	row := s.db.QueryRowContext(ctx, `
		SELECT build_id, count, dimensions, built_at
		FROM snapshots WHERE active = 1
	`)
	if err := row.Scan(&info.BuildID, &info.Count, &info.Dimensions, &info.BuiltAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, nil, domain.ErrNotFound
		}
		return info, nil, fmt.Errorf("querying snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, event_id, title, dates_text, geo_text,
			vectorise_text, chunk, full_vectorise_text, context_chunk
		FROM chunks WHERE build_id = ? ORDER BY position
	`, info.BuildID)
	if err != nil {
		return info, nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0, info.Count)
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.Position, &c.EventID, &c.Title, &c.DatesText, &c.GeoText,
			&c.VectoriseText, &c.Text, &c.FullVectoriseText, &c.ContextChunk); err != nil {
			return info, nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return info, nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return info, chunks, nil
}

// ListSnapshots returns build history, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT build_id, count, dimensions, built_at
		FROM snapshots ORDER BY built_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.SnapshotInfo
	for rows.Next() {
		var info domain.SnapshotInfo
		if err := rows.Scan(&info.BuildID, &info.Count, &info.Dimensions, &info.BuiltAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
