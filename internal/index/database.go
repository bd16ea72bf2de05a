// Package index mirrors file tags into a local SQLite database so they can
// be counted and looked up without walking the filesystem.
//
// The attributes on each file stay the source of truth. The index is only
// as fresh as the last command that touched a file or the last
// "xatag index update".
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ohspite/xatag/internal/sqlutil"
	"github.com/ohspite/xatag/internal/tags"
)

// CurrentDBVersion is the current database schema version.
const CurrentDBVersion = 1

// ErrFileNotIndexed indicates the requested path is not in the index.
var ErrFileNotIndexed = errors.New("file not found in index")

// Database is the SQLite database handle.
type Database struct {
	db  *sql.DB
	now func() time.Time
}

// DB returns the underlying sql.DB for advanced queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Open opens or creates the database at path. A database written by an
// older schema is dropped and recreated; it only mirrors attributes, so
// "xatag index update" restores it.
func Open(path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Database{db: db, now: time.Now}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Database, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	d := &Database{db: db, now: time.Now}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initialize() error {
	if _, err := d.db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	version, err := d.schemaVersion()
	if err != nil {
		return err
	}
	if version != 0 && version != CurrentDBVersion {
		if _, err := d.db.Exec(`DROP TABLE IF EXISTS tags; DROP TABLE IF EXISTS files;`); err != nil {
			return fmt.Errorf("failed to drop old schema: %w", err)
		}
	}

	schema := `
		-- One row per indexed file
		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			indexed_at INTEGER NOT NULL   -- Unix timestamp of the last write
		);

		-- One row per (file, key, value); the default key is ''
		CREATE TABLE IF NOT EXISTS tags (
			path TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (path, key, value)
		);

		CREATE INDEX IF NOT EXISTS idx_tags_key_value ON tags(key, value);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('db_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(CurrentDBVersion),
	)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

func (d *Database) schemaVersion() (int, error) {
	var raw string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = 'db_version'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}
	return v, nil
}

// Put replaces everything indexed for path with d. An empty dict removes
// the file from the index.
func (d *Database) Put(path string, dict tags.Dict) error {
	return sqlutil.WithTx(d.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM tags WHERE path = ?`, path); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if len(dict) == 0 {
			if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
				return fmt.Errorf("failed to remove file: %w", err)
			}
			return nil
		}

		_, err := tx.Exec(
			`INSERT INTO files (path, indexed_at) VALUES (?, ?)
			 ON CONFLICT(path) DO UPDATE SET indexed_at = excluded.indexed_at`,
			path, d.now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert file: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO tags (path, key, value) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range dict.Tags() {
			if _, err := stmt.Exec(path, t.Key, t.Value); err != nil {
				return fmt.Errorf("failed to insert tag: %w", err)
			}
		}
		return nil
	})
}

// Remove drops path from the index.
func (d *Database) Remove(path string) error {
	return d.Put(path, nil)
}

// Get returns the indexed tags of path.
func (d *Database) Get(path string) (tags.Dict, error) {
	var indexedAt int64
	err := d.db.QueryRow(`SELECT indexed_at FROM files WHERE path = ?`, path).Scan(&indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotIndexed, path)
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`SELECT key, value FROM tags WHERE path = ? ORDER BY key, value`, path)
	if err != nil {
		return nil, err
	}
	pairs, err := sqlutil.ScanRows(rows, func(r *sql.Rows) (tags.Tag, error) {
		var t tags.Tag
		err := r.Scan(&t.Key, &t.Value)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return tags.FromTags(pairs), nil
}

// Paths returns every indexed path in order.
func (d *Database) Paths() ([]string, error) {
	rows, err := d.db.Query(`SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanStrings(rows)
}
