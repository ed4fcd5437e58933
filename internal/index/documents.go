package index

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yangdev/ytree/internal/schema"
)

// DocumentEntry holds the index state for a schema document.
type DocumentEntry struct {
	DocPath     string
	ContentHash string
	IndexedAt   time.Time
}

// ModuleRecord is one module registration in the index.
type ModuleRecord struct {
	Name      string
	Revision  string
	Namespace string
	Prefix    string
	DocPath   string
}

// RebuildStats summarizes one Rebuild pass.
type RebuildStats struct {
	Indexed int
	Skipped int
	Pruned  int
}

// Rebuild scans workDir for documents matching the patterns and brings the
// index up to date. Unchanged documents (by content hash) are skipped;
// entries for documents that no longer exist are pruned.
func (x *Index) Rebuild(workDir string, patterns []string) (*RebuildStats, error) {
	stats := &RebuildStats{}
	valid := map[string]bool{}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(workDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad document pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			valid[path] = true

			hash, err := hashFile(path)
			if err != nil {
				return nil, err
			}
			changed, err := x.IsDocumentChanged(path, hash)
			if err != nil {
				return nil, err
			}
			if !changed {
				stats.Skipped++
				continue
			}

			mods, err := schema.DocumentModules(path)
			if err != nil {
				return nil, err
			}
			if err := x.setDocument(path, hash, mods); err != nil {
				return nil, err
			}
			stats.Indexed++
		}
	}

	pruned, err := x.pruneStale(valid)
	if err != nil {
		return nil, err
	}
	stats.Pruned = pruned
	return stats, nil
}

// Lookup returns the module records matching name and revision. An empty
// revision matches any revision. Returns schema.NotFoundError when the
// module is not indexed.
func (x *Index) Lookup(name, revision string) ([]ModuleRecord, error) {
	query := `
		SELECT name, revision, namespace, prefix, doc_path FROM modules
		WHERE name = ?`
	args := []any{name}
	if revision != "" {
		query += " AND revision = ?"
		args = append(args, revision)
	}
	query += " ORDER BY revision, doc_path"

	rows, err := x.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup module %s: %w", name, err)
	}
	defer rows.Close()

	records, err := scanModuleRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &schema.NotFoundError{Name: name, Revision: revision}
	}
	return records, nil
}

// Modules returns every module registration in the index, ordered by name
// and revision.
func (x *Index) Modules() ([]ModuleRecord, error) {
	rows, err := x.db.Query(`
		SELECT name, revision, namespace, prefix, doc_path FROM modules
		ORDER BY name, revision, doc_path`)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()
	return scanModuleRecords(rows)
}

// Documents returns all indexed document entries ordered by path.
func (x *Index) Documents() ([]DocumentEntry, error) {
	rows, err := x.db.Query(`
		SELECT doc_path, content_hash, indexed_at FROM documents ORDER BY doc_path`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var entries []DocumentEntry
	for rows.Next() {
		var entry DocumentEntry
		var indexedAt string
		if err := rows.Scan(&entry.DocPath, &entry.ContentHash, &indexedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// IsDocumentChanged checks if a document's content has changed since it was
// last indexed. Returns true if the document has changed or was never indexed.
func (x *Index) IsDocumentChanged(path, newHash string) (bool, error) {
	var oldHash string
	err := x.db.QueryRow("SELECT content_hash FROM documents WHERE doc_path = ?", path).Scan(&oldHash)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get document hash %s: %w", path, err)
	}
	return oldHash != newHash, nil
}

// DeleteDocument removes a document and its module registrations.
func (x *Index) DeleteDocument(path string) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM modules WHERE doc_path = ?", path); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete modules for %s: %w", path, err)
	}
	if _, err := tx.Exec("DELETE FROM documents WHERE doc_path = ?", path); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// setDocument records a document and replaces its module registrations.
func (x *Index) setDocument(path, hash string, mods []*schema.Module) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO documents (doc_path, content_hash, indexed_at)
		VALUES (?, ?, ?)`,
		path, hash, time.Now().Format(time.RFC3339),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("set document %s: %w", path, err)
	}

	if _, err := tx.Exec("DELETE FROM modules WHERE doc_path = ?", path); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear modules for %s: %w", path, err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO modules (name, revision, namespace, prefix, doc_path)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range mods {
		if _, err := stmt.Exec(m.Name, m.Revision, m.Namespace, m.Prefix, path); err != nil {
			tx.Rollback()
			return fmt.Errorf("register module %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// pruneStale removes entries for documents no longer in the provided set.
func (x *Index) pruneStale(validPaths map[string]bool) (int, error) {
	entries, err := x.Documents()
	if err != nil {
		return 0, err
	}

	var pruned int
	for _, entry := range entries {
		if !validPaths[entry.DocPath] {
			if err := x.DeleteDocument(entry.DocPath); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

func scanModuleRecords(rows *sql.Rows) ([]ModuleRecord, error) {
	var records []ModuleRecord
	for rows.Next() {
		var r ModuleRecord
		if err := rows.Scan(&r.Name, &r.Revision, &r.Namespace, &r.Prefix, &r.DocPath); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
