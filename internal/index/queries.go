package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ohspite/xatag/internal/sqlutil"
	"github.com/ohspite/xatag/internal/tags"
)

// FilesWith returns the indexed paths carrying every tag in ts. A wildcard
// tag ("key:") matches any value of its key. No tags matches nothing.
func (d *Database) FilesWith(ts []tags.Tag) ([]string, error) {
	if len(ts) == 0 {
		return nil, nil
	}

	var (
		parts []string
		args  []any
	)
	for _, t := range ts {
		if t.IsWildcard() {
			parts = append(parts, `SELECT path FROM tags WHERE key = ?`)
			args = append(args, t.Key)
			continue
		}
		parts = append(parts, `SELECT path FROM tags WHERE key = ? AND value = ?`)
		args = append(args, t.Key, t.Value)
	}

	query := strings.Join(parts, " INTERSECT ") + " ORDER BY path"
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	return sqlutil.ScanStrings(rows)
}

// KeyStats summarizes one tag key.
type KeyStats struct {
	Key    string `json:"key"`
	Values int    `json:"values"`
	Files  int    `json:"files"`
}

// Stats summarizes the whole index.
type Stats struct {
	Files int        `json:"files"`
	Tags  int        `json:"tags"`
	Keys  []KeyStats `json:"keys"`
}

// Stats counts files, tag assignments, and distinct values per key.
func (d *Database) Stats() (*Stats, error) {
	var s Stats
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&s.Files); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&s.Tags); err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}

	rows, err := d.db.Query(`
		SELECT key, COUNT(DISTINCT value), COUNT(DISTINCT path)
		FROM tags
		GROUP BY key
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count keys: %w", err)
	}
	keys, err := sqlutil.ScanRows(rows, func(r *sql.Rows) (KeyStats, error) {
		var k KeyStats
		err := r.Scan(&k.Key, &k.Values, &k.Files)
		return k, err
	})
	if err != nil {
		return nil, err
	}
	s.Keys = keys
	return &s, nil
}

// Values returns the distinct values of key across the index.
func (d *Database) Values(key string) ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT value FROM tags WHERE key = ? ORDER BY value`, key)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanStrings(rows)
}

// Prune removes indexed paths for which exists reports false and returns
// the removed paths.
func (d *Database) Prune(exists func(path string) bool) ([]string, error) {
	all, err := d.Paths()
	if err != nil {
		return nil, err
	}

	var gone []string
	for _, p := range all {
		if !exists(p) {
			gone = append(gone, p)
		}
	}
	if len(gone) == 0 {
		return nil, nil
	}

	placeholders, args := sqlutil.InClauseArgs(gone)
	err = sqlutil.WithTx(d.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM tags WHERE path IN (`+placeholders+`)`, args...); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM files WHERE path IN (`+placeholders+`)`, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prune index: %w", err)
	}
	return gone, nil
}
