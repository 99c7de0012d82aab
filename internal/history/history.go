// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package history tracks snapshot files in a SQLite database and records
// which one the server should serve.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/google/uuid"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// SchemaVersion is the history schema this build reads and writes.
const SchemaVersion = 1

// Snapshot is one recorded snapshot file.
type Snapshot struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Path      string    `json:"path" yaml:"path"`
	Triples   int       `json:"triples" yaml:"triples"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Current   bool      `json:"current" yaml:"current"`
}

// History is the snapshot registry. Snapshot files live in one directory;
// records hold names relative to it.
type History struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// Open opens (or creates) the history database at dbPath and the snapshot
// directory. Both parent directories are created when missing.
func Open(dbPath, snapshotDir string) (*History, error) {
	for _, dir := range []string{filepath.Dir(dbPath), snapshotDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "creating directory", rdlerr.FieldPath(dir))
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "opening history db", rdlerr.FieldPath(dbPath))
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "pinging history db", rdlerr.FieldPath(dbPath))
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &History{db: db, dir: snapshotDir, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	triples    INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	is_current INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
`
	if _, err := db.Exec(ddl); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "migrating history db")
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion)); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "recording schema version")
	}

	var raw string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "reading schema version")
	}
	version, err := strconv.Atoi(raw)
	if err != nil || version > SchemaVersion {
		return rdlerr.New(rdlerr.CodeHistorySchemaInvalid,
			fmt.Sprintf("history schema version %q is not supported (max %d)", raw, SchemaVersion))
	}

	return nil
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	return h.db.Close()
}

// Dir returns the snapshot directory.
func (h *History) Dir() string { return h.dir }

// Path returns where the snapshot called name is stored.
func (h *History) Path(name string) string {
	return filepath.Join(h.dir, name)
}

// Version returns the schema version stored in the database.
func (h *History) Version(ctx context.Context) (int, error) {
	var raw string
	err := h.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	if err != nil {
		return 0, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "reading schema version")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, rdlerr.Wrap(err, rdlerr.CodeHistorySchemaInvalid, "parsing schema version")
	}
	return v, nil
}

// NextName returns the first unused YYYY-MM-DD-N.nt name for the given day,
// counting from 1. A name is used if it is recorded or a file already sits
// in the snapshot directory.
func (h *History) NextName(ctx context.Context, now time.Time) (string, error) {
	day := now.Format(time.DateOnly)
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s-%d.nt", day, n)

		var exists int
		err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE name = ?`, name).Scan(&exists)
		if err != nil {
			return "", rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "checking snapshot name")
		}
		if exists > 0 {
			continue
		}
		if _, err := os.Stat(h.Path(name)); err == nil {
			continue
		}
		return name, nil
	}
}

// Add records the snapshot file name, which must already exist in the
// snapshot directory, and marks it current.
func (h *History) Add(ctx context.Context, name string, triples int) (*Snapshot, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(h.Path(name)); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotNotFound, "snapshot file missing", rdlerr.FieldPath(h.Path(name)))
	}

	snap := &Snapshot{
		ID:        uuid.New().String(),
		Name:      name,
		Path:      h.Path(name),
		Triples:   triples,
		CreatedAt: h.now().UTC(),
		Current:   true,
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "beginning tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "checking snapshot name")
	}
	if exists > 0 {
		return nil, rdlerr.New(rdlerr.CodeHistoryConflict, "snapshot already recorded", rdlerr.FieldSnapshot(name))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE snapshots SET is_current = 0`); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "clearing current snapshot")
	}

	const q = `INSERT INTO snapshots (id, name, triples, created_at, is_current) VALUES (?, ?, ?, ?, 1)`
	if _, err := tx.ExecContext(ctx, q, snap.ID, snap.Name, snap.Triples, snap.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "inserting snapshot", rdlerr.FieldSnapshot(name))
	}

	if err := tx.Commit(); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "committing snapshot", rdlerr.FieldSnapshot(name))
	}

	slog.Info("snapshot recorded", "name", name, "triples", triples)
	return snap, nil
}

// Import copies the file at src into the snapshot directory under the next
// free name for today, counts its triples and records it as current.
func (h *History) Import(ctx context.Context, src string) (*Snapshot, error) {
	store, err := rdf.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	name, err := h.NextName(ctx, h.now())
	if err != nil {
		return nil, err
	}
	if format, _ := rdf.FormatForPath(src); format == rdf.FormatTurtle {
		name = strings.TrimSuffix(name, ".nt") + ".ttl"
	}

	if err := copyFile(src, h.Path(name)); err != nil {
		return nil, err
	}

	snap, err := h.Add(ctx, name, store.Len())
	if err != nil {
		_ = os.Remove(h.Path(name))
		return nil, err
	}
	return snap, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotReadFailure, "opening snapshot", rdlerr.FieldPath(src))
	}
	defer in.Close() //nolint:errcheck // read-only

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "creating snapshot", rdlerr.FieldPath(dst))
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "copying snapshot", rdlerr.FieldPath(dst))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "closing snapshot", rdlerr.FieldPath(dst))
	}
	return nil
}

const selectSnapshot = `SELECT id, name, triples, created_at, is_current FROM snapshots`

// List returns every recorded snapshot, newest first.
func (h *History) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := h.db.QueryContext(ctx, selectSnapshot+` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "listing snapshots")
	}
	defer rows.Close() //nolint:errcheck // error on read-path close is not actionable

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := h.scan(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "iterating snapshots")
	}
	return snaps, nil
}

// Current returns the snapshot marked current.
func (h *History) Current(ctx context.Context) (*Snapshot, error) {
	row := h.db.QueryRowContext(ctx, selectSnapshot+` WHERE is_current = 1 LIMIT 1`)
	snap, err := h.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rdlerr.New(rdlerr.CodeHistoryEmpty, "no current snapshot recorded")
	}
	return snap, err
}

// Get returns the snapshot recorded under name.
func (h *History) Get(ctx context.Context, name string) (*Snapshot, error) {
	row := h.db.QueryRowContext(ctx, selectSnapshot+` WHERE name = ?`, name)
	snap, err := h.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rdlerr.New(rdlerr.CodeHistoryNotFound, "snapshot not recorded", rdlerr.FieldSnapshot(name))
	}
	return snap, err
}

// Use marks the snapshot called name as current.
func (h *History) Use(ctx context.Context, name string) (*Snapshot, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "beginning tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "checking snapshot name")
	}
	if exists == 0 {
		return nil, rdlerr.New(rdlerr.CodeHistoryNotFound, "snapshot not recorded", rdlerr.FieldSnapshot(name))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE snapshots SET is_current = (name = ?)`, name); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "switching current snapshot", rdlerr.FieldSnapshot(name))
	}
	if err := tx.Commit(); err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "committing switch", rdlerr.FieldSnapshot(name))
	}

	slog.Info("current snapshot changed", "name", name)
	return h.Get(ctx, name)
}

// Delete forgets the snapshot called name and removes its file. The current
// snapshot cannot be deleted.
func (h *History) Delete(ctx context.Context, name string) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "beginning tx")
	}
	defer tx.Rollback() //nolint:errcheck

	// The current-check is part of the DELETE so a concurrent Use cannot
	// slip in between them.
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ? AND is_current = 0`, name)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "deleting snapshot", rdlerr.FieldSnapshot(name))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "deleting snapshot", rdlerr.FieldSnapshot(name))
	}
	if n == 0 {
		var current int
		err := tx.QueryRowContext(ctx, `SELECT is_current FROM snapshots WHERE name = ?`, name).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return rdlerr.New(rdlerr.CodeHistoryNotFound, "snapshot not recorded", rdlerr.FieldSnapshot(name))
		case err != nil:
			return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "checking snapshot", rdlerr.FieldSnapshot(name))
		}
		return rdlerr.New(rdlerr.CodeHistoryDeleteConflict, "cannot delete the current snapshot", rdlerr.FieldSnapshot(name))
	}
	if err := tx.Commit(); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "committing delete", rdlerr.FieldSnapshot(name))
	}

	path := h.Path(name)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "removing snapshot file", rdlerr.FieldPath(path))
	}

	slog.Info("snapshot deleted", "name", name)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (h *History) scan(row scanner) (*Snapshot, error) {
	var snap Snapshot
	var createdAt string
	var current int
	if err := row.Scan(&snap.ID, &snap.Name, &snap.Triples, &createdAt, &current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "scanning snapshot row")
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeHistoryDatabaseFailure, "parsing snapshot created_at", rdlerr.FieldSnapshot(snap.Name))
	}
	snap.CreatedAt = t
	snap.Current = current == 1
	snap.Path = h.Path(snap.Name)
	return &snap, nil
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return rdlerr.New(rdlerr.CodeHistoryNameInvalid, "snapshot name must be a plain file name", rdlerr.FieldSnapshot(name))
	}
	if _, err := rdf.FormatForPath(name); err != nil {
		return rdlerr.New(rdlerr.CodeHistoryNameInvalid, "snapshot name must end in .nt or .ttl", rdlerr.FieldSnapshot(name))
	}
	return nil
}
