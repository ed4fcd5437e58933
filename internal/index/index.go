// Package index provides a SQLite-backed workspace index of schema documents.
// The index is stored in .ytree/index.db and maps module names and revisions
// to the documents that define them, so commands can locate a module without
// re-reading every document in the workspace.
package index

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Index manages the .ytree/index.db SQLite database that tracks schema
// documents and the modules they define.
type Index struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the index database at the specified .ytree directory.
// It initializes the schema if the database is new.
func Open(ytreeDir string) (*Index, error) {
	dbPath := filepath.Join(ytreeDir, "index.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	idx := &Index{db: db, dbPath: dbPath}

	// Initialize schema
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return idx, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	if x.db == nil {
		return nil
	}
	return x.db.Close()
}

// Clear removes all indexed documents and modules.
func (x *Index) Clear() error {
	_, err := x.db.Exec("DELETE FROM modules; DELETE FROM documents;")
	if err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (x *Index) DB() *sql.DB {
	return x.db
}

// Stats returns index statistics.
type Stats struct {
	DocumentCount int64
	ModuleCount   int64
}

// GetStats returns statistics about the index contents.
func (x *Index) GetStats() (*Stats, error) {
	var stats Stats

	err := x.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&stats.DocumentCount)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	err = x.db.QueryRow("SELECT COUNT(*) FROM modules").Scan(&stats.ModuleCount)
	if err != nil {
		return nil, fmt.Errorf("count modules: %w", err)
	}

	return &stats, nil
}
