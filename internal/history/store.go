// Package history persists recorded coverage snapshots in a local SQLite
// database so reports, diffs, and timelines can run against earlier state.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"typecov/internal/coverage"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or opens the snapshot history database at path, creating
// the parent directory when missing and applying pending migrations.
func Open(path string) (*Store, error) {
	dbPath := strings.TrimSpace(path)
	if dbPath == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if info, err := os.Stat(dbPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory", dbPath)
	}
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir %q: %w", dir, err)
		}
	}

	// WAL with a busy timeout keeps a record run and a concurrent report
	// from tripping over each other's locks.
	db, err := sql.Open(driverName, fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open history db %q: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db %q: %w", dbPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema %q: %w", dbPath, err)
	}

	return &Store{path: dbPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveSnapshot upserts one snapshot under a project key. Re-recording the
// same timestamp and commit replaces the earlier row.
func (s *Store) SaveSnapshot(projectKey string, snapshot *coverage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = normalizeProjectKey(projectKey)

	sigils, err := json.Marshal(snapshot.Sigils)
	if err != nil {
		return fmt.Errorf("marshal sigils: %w", err)
	}

	query := `
INSERT INTO snapshots (
  id, project_key, schema_version, ts_epoch, version_static, version_runtime,
  duration, commit_sha, commit_ts_epoch, files, modules, classes,
  singleton_classes, methods_with_sig, methods_without_sig, calls_typed,
  calls_untyped, sigils_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(project_key, ts_epoch, commit_sha) DO UPDATE SET
  schema_version=excluded.schema_version,
  version_static=excluded.version_static,
  version_runtime=excluded.version_runtime,
  duration=excluded.duration,
  commit_ts_epoch=excluded.commit_ts_epoch,
  files=excluded.files,
  modules=excluded.modules,
  classes=excluded.classes,
  singleton_classes=excluded.singleton_classes,
  methods_with_sig=excluded.methods_with_sig,
  methods_without_sig=excluded.methods_without_sig,
  calls_typed=excluded.calls_typed,
  calls_untyped=excluded.calls_untyped,
  sigils_json=excluded.sigils_json
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			uuid.NewString(),
			projectKey,
			SchemaVersion,
			snapshot.Timestamp,
			snapshot.VersionStatic,
			snapshot.VersionRuntime,
			snapshot.Duration,
			snapshot.CommitSHA,
			snapshot.CommitTimestamp,
			snapshot.Files,
			snapshot.Modules,
			snapshot.Classes,
			snapshot.SingletonClasses,
			snapshot.MethodsWithSig,
			snapshot.MethodsWithoutSig,
			snapshot.CallsTyped,
			snapshot.CallsUntyped,
			string(sigils),
		)
		return err
	})
}

// LoadSnapshots returns a project's snapshots in recording order. A zero
// since loads everything.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]*coverage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projectKey = normalizeProjectKey(projectKey)

	query := selectColumns + ` WHERE project_key = ?`
	args := []any{projectKey}
	if !since.IsZero() {
		query += ` AND ts_epoch >= ?`
		args = append(args, since.UTC().Unix())
	}
	query += ` ORDER BY ts_epoch ASC, commit_sha ASC`

	return s.querySnapshots("load snapshots", query, args...)
}

// Latest returns up to n most recent snapshots for a project, oldest
// first so adjacent pairs diff in chronological order.
func (s *Store) Latest(projectKey string, n int) ([]*coverage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil, nil
	}
	projectKey = normalizeProjectKey(projectKey)

	query := selectColumns + ` WHERE project_key = ? ORDER BY ts_epoch DESC, commit_sha DESC LIMIT ?`
	snapshots, err := s.querySnapshots("load latest snapshots", query, projectKey, n)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}

const selectColumns = `
SELECT
  ts_epoch, version_static, version_runtime, duration, commit_sha,
  commit_ts_epoch, files, modules, classes, singleton_classes,
  methods_with_sig, methods_without_sig, calls_typed, calls_untyped,
  sigils_json
FROM snapshots
`

func (s *Store) querySnapshots(op, query string, args ...any) ([]*coverage.Snapshot, error) {
	var rows *sql.Rows
	err := s.withRetry(op, func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]*coverage.Snapshot, 0)
	for rows.Next() {
		snapshot := &coverage.Snapshot{Sigils: make(map[coverage.Strictness]int64)}
		var sigilsRaw string
		if err := rows.Scan(
			&snapshot.Timestamp,
			&snapshot.VersionStatic,
			&snapshot.VersionRuntime,
			&snapshot.Duration,
			&snapshot.CommitSHA,
			&snapshot.CommitTimestamp,
			&snapshot.Files,
			&snapshot.Modules,
			&snapshot.Classes,
			&snapshot.SingletonClasses,
			&snapshot.MethodsWithSig,
			&snapshot.MethodsWithoutSig,
			&snapshot.CallsTyped,
			&snapshot.CallsUntyped,
			&sigilsRaw,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		if sigilsRaw != "" {
			if err := json.Unmarshal([]byte(sigilsRaw), &snapshot.Sigils); err != nil {
				return nil, fmt.Errorf("parse sigils column: %w", err)
			}
		}

		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func normalizeProjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}
