package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/sink/sqlite/migrations"
	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexSink = (*Store)(nil)

// Store is a SQLite-backed index sink.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the index database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: sqlite data directory is required", domain.ErrInvalidInput)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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
func (s *Store) migrate(fsys fs.FS) error {
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
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateIndex drops the project's records and stores the new schema.
func (s *Store) CreateIndex(ctx context.Context, projectID string, schema *domain.Schema) error {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshalling schema: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"record_fields", "records", "indexes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("dropping index: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO indexes (project_id, schema, created_at) VALUES (?, ?, ?)",
		projectID, string(schemaJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	return tx.Commit()
}

// Upsert stores a record, replacing any previous version.
func (s *Store) Upsert(ctx context.Context, projectID string, record *domain.IndexRecord) error {
	schema, err := s.Schema(ctx, projectID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (project_id, id, text, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id, id) DO UPDATE SET
			text = excluded.text,
			body = excluded.body,
			updated_at = excluded.updated_at
	`, projectID, record.ID, record.Text, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM record_fields WHERE project_id = ? AND record_id = ?", projectID, record.ID); err != nil {
		return fmt.Errorf("clearing fields: %w", err)
	}
	for _, kv := range keywordValues(schema, record) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO record_fields (project_id, record_id, key, value) VALUES (?, ?, ?, ?)",
			projectID, record.ID, kv[0], kv[1]); err != nil {
			return fmt.Errorf("storing field %s: %w", kv[0], err)
		}
	}

	return tx.Commit()
}

// keywordValues lists the key/value pairs of keyword-typed fields.
func keywordValues(schema *domain.Schema, record *domain.IndexRecord) [][2]string {
	var out [][2]string
	fields := record.Fields()
	for _, key := range record.Keys() {
		if key == domain.FieldID {
			continue
		}
		if dt, ok := schema.Type(key); !ok || dt != domain.DatatypeKeyword {
			continue
		}
		switch v := fields[key].(type) {
		case string:
			out = append(out, [2]string{key, v})
		case []string:
			for _, s := range v {
				out = append(out, [2]string{key, s})
			}
		case nil:
		default:
			out = append(out, [2]string{key, fmt.Sprint(v)})
		}
	}
	return out
}

// Schema returns the schema a project index was created with.
func (s *Store) Schema(ctx context.Context, projectID string) (*domain.Schema, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT schema FROM indexes WHERE project_id = ?", projectID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: index %s", domain.ErrNotFound, projectID)
	}
	if err != nil {
		return nil, err
	}
	schema := domain.NewSchema()
	if err := json.Unmarshal([]byte(raw), schema); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return schema, nil
}

// Record returns the stored JSON body of a record.
func (s *Store) Record(ctx context.Context, projectID, id string) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM records WHERE project_id = ? AND id = ?", projectID, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s/%s", domain.ErrNotFound, projectID, id)
	}
	if err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return body, nil
}

// Find returns the sorted ids of records whose keyword field key has value.
func (s *Store) Find(ctx context.Context, projectID, key, value string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT record_id FROM record_fields
		WHERE project_id = ? AND key = ? AND value = ?
		ORDER BY record_id
	`, projectID, key, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of records in a project index.
func (s *Store) Count(ctx context.Context, projectID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE project_id = ?", projectID).Scan(&n)
	return n, err
}
