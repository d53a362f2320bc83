package sprite7800

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/bodgit/sprite7800/canvas"
	"github.com/bodgit/sprite7800/digest"
	"github.com/bodgit/sprite7800/snapshot"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a database of project files and the objects within them
type Catalog struct {
	db *sql.DB

	// SQLite allows one writer at a time
	mu sync.Mutex
}

// Entry is one catalogued object
type Entry struct {
	File   string
	Group  string
	Name   string
	Mode   string
	Width  int
	Height int
	Digest string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s/%s (%s, %dx%d, %s)", e.File, e.Group, e.Name, e.Mode, e.Width, e.Height, e.Digest)
}

// NewCatalog opens the catalogue in file, creating the tables if necessary
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS snapshot (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, objects INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS object (id INTEGER PRIMARY KEY NOT NULL, snapshot_id INTEGER NOT NULL, seq INTEGER NOT NULL, grp TEXT NOT NULL, name TEXT NOT NULL, mode TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, digest TEXT NOT NULL, FOREIGN KEY(snapshot_id) REFERENCES snapshot(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS object_digest ON object (digest)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// ObjectDigest returns the structural digest of an object as it would be
// loaded, so objects differing only in out of range color indices match
func ObjectDigest(o snapshot.Object) (string, error) {
	cv, err := canvas.FromSnapshot(o, nil, canvas.DefaultConfig())
	if err != nil {
		return "", err
	}
	defer cv.Close()
	return digest.String(cv.Grid().Sum64()), nil
}

// SnapshotSHA1 returns the fingerprint recorded for file, or an empty string
// if it has not been catalogued
func (c *Catalog) SnapshotSHA1(file string) (string, error) {
	var sha string
	switch err := c.db.QueryRow("SELECT sha1 FROM snapshot WHERE path = ?", file).Scan(&sha); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return sha, nil
	default:
		return "", err
	}
}

// AddSnapshot catalogues every object in s, replacing anything previously
// recorded for file. It returns the number of objects catalogued.
func (c *Catalog) AddSnapshot(file, sha string, s *snapshot.Snapshot) (int, error) {
	type row struct {
		group  string
		o      *snapshot.Object
		digest string
	}
	var rows []row
	if err := s.Walk(func(path []string, o *snapshot.Object) error {
		d, err := ObjectDigest(*o)
		if err != nil {
			return err
		}
		rows = append(rows, row{strings.Join(path, "/"), o, d})
		return nil
	}); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM snapshot WHERE path = ?", file); err != nil {
		return 0, err
	}

	result, err := tx.Exec("INSERT INTO snapshot (path, sha1, objects) VALUES (?, ?, ?)", file, sha, len(rows))
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, r := range rows {
		if _, err := tx.Exec("INSERT INTO object (snapshot_id, seq, grp, name, mode, width, height, digest) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", id, i, r.group, r.o.Name, r.o.DisplayModeName, r.o.Width, r.o.Height, r.digest); err != nil {
			return 0, err
		}
	}

	return len(rows), tx.Commit()
}

// RemoveSnapshot forgets file and its objects
func (c *Catalog) RemoveSnapshot(file string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec("DELETE FROM snapshot WHERE path = ?", file)
	return err
}

const selectEntries = "SELECT s.path, o.grp, o.name, o.mode, o.width, o.height, o.digest FROM object AS o JOIN snapshot AS s ON o.snapshot_id = s.id"

func (c *Catalog) entries(query string, args ...interface{}) ([]Entry, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.File, &e.Group, &e.Name, &e.Mode, &e.Width, &e.Height, &e.Digest); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindObjectsByDigest returns every object with the given digest
func (c *Catalog) FindObjectsByDigest(d string) ([]Entry, error) {
	return c.entries(selectEntries+" WHERE o.digest = ? ORDER BY s.path, o.seq", strings.ToUpper(d))
}

// FindObjectsByMode returns every object using the named display mode
func (c *Catalog) FindObjectsByMode(m string) ([]Entry, error) {
	return c.entries(selectEntries+" WHERE o.mode = ? COLLATE NOCASE ORDER BY s.path, o.seq", m)
}

// Duplicates returns every object whose pixels match at least one other
// catalogued object, grouped by digest
func (c *Catalog) Duplicates() ([][]Entry, error) {
	entries, err := c.entries(selectEntries + " WHERE o.digest IN (SELECT digest FROM object GROUP BY digest HAVING COUNT(*) > 1) ORDER BY o.digest, s.path, o.seq")
	if err != nil {
		return nil, err
	}

	var groups [][]Entry
	for i, e := range entries {
		if i == 0 || e.Digest != entries[i-1].Digest {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], e)
	}
	return groups, nil
}
