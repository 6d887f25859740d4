package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/manifest/sqlite/migrations"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ManifestStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.ManifestStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpus/data/manifest.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpus", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "manifest.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateRun records a new staging run.
func (s *Store) CreateRun(ctx context.Context, run *domain.StagingRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, address, working_dir, output_dir, recursive, expand_archives,
			workers, status, total, plain, archives, skipped, failed, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Address, run.WorkingDir, run.OutputDir, run.Recursive, run.ExpandArchives,
		run.Workers, run.Status.String(), run.Counts.Total, run.Counts.Plain, run.Counts.Archives,
		run.Counts.Skipped, run.Counts.Failed, run.Error, run.StartedAt, nullTimePtr(run.CompletedAt))
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

// UpdateRun persists the current status and counters of a run.
func (s *Store) UpdateRun(ctx context.Context, run *domain.StagingRun) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs SET
			status = ?,
			total = ?,
			plain = ?,
			archives = ?,
			skipped = ?,
			failed = ?,
			error = ?,
			completed_at = ?
		WHERE id = ?
	`, run.Status.String(), run.Counts.Total, run.Counts.Plain, run.Counts.Archives,
		run.Counts.Skipped, run.Counts.Failed, run.Error, nullTimePtr(run.CompletedAt), run.ID)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.StagingRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, address, working_dir, output_dir, recursive, expand_archives,
			workers, status, total, plain, archives, skipped, failed, error, started_at, completed_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*domain.StagingRun, error) {
	query := `
		SELECT id, address, working_dir, output_dir, recursive, expand_archives,
			workers, status, total, plain, archives, skipped, failed, error, started_at, completed_at
		FROM runs ORDER BY started_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.StagingRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// SaveDocument inserts or updates one document reference. The original
// rowid survives updates, so listing by rowid preserves discovery
// order across state transitions.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.DocumentReference) error {
	var errText string
	if doc.Err != nil {
		errText = doc.Err.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, run_id, parent_id, remote_key, local_path, size,
			state, classification, depth, error, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			local_path = excluded.local_path,
			size = excluded.size,
			state = excluded.state,
			classification = excluded.classification,
			depth = excluded.depth,
			error = excluded.error,
			fetched_at = excluded.fetched_at
	`, doc.ID, doc.RunID, nullStringPtr(doc.ParentID), doc.RemoteKey, doc.LocalCachePath, doc.Size,
		doc.State.String(), doc.Archive.String(), doc.Depth, errText, nullTime(doc.FetchedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// ListDocuments returns every reference recorded for a run, in
// insertion order.
func (s *Store) ListDocuments(ctx context.Context, runID string) ([]*domain.DocumentReference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, parent_id, remote_key, local_path, size,
			state, classification, depth, error, fetched_at
		FROM documents WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.DocumentReference //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.DocumentReference
		var parentID sql.NullString
		var state, classification, errText string
		var fetchedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.RunID, &parentID, &doc.RemoteKey, &doc.LocalCachePath,
			&doc.Size, &state, &classification, &doc.Depth, &errText, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.State = domain.DocumentState(state)
		doc.Archive = domain.ArchiveKind(classification)
		if parentID.Valid {
			doc.ParentID = &parentID.String
		}
		if errText != "" {
			doc.Err = errors.New(errText)
		}
		if fetchedAt.Valid {
			doc.FetchedAt = fetchedAt.Time
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads one runs row.
func scanRun(row scanner) (*domain.StagingRun, error) {
	var run domain.StagingRun
	var status string
	var completedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.Address, &run.WorkingDir, &run.OutputDir,
		&run.Recursive, &run.ExpandArchives, &run.Workers, &status,
		&run.Counts.Total, &run.Counts.Plain, &run.Counts.Archives,
		&run.Counts.Skipped, &run.Counts.Failed, &run.Error,
		&run.StartedAt, &completedAt); err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// nullStringPtr converts an optional string to its SQL representation.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullTime stores the zero time as NULL.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// nullTimePtr converts an optional time to its SQL representation.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
