package index

// schemaSQL defines the SQLite schema for the index database.
// Tables:
//   - documents: tracks indexed schema documents with a content hash for
//     incremental reindexing
//   - modules: maps module name and revision to the document defining it
const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    doc_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    indexed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
    name TEXT NOT NULL,
    revision TEXT NOT NULL,
    namespace TEXT NOT NULL,
    prefix TEXT NOT NULL,
    doc_path TEXT NOT NULL,
    PRIMARY KEY (name, revision, doc_path)
);

CREATE INDEX IF NOT EXISTS idx_modules_name ON modules(name);
CREATE INDEX IF NOT EXISTS idx_modules_doc_path ON modules(doc_path);
`

// initSchema creates the database tables and indexes if they don't exist.
func (x *Index) initSchema() error {
	_, err := x.db.Exec(schemaSQL)
	return err
}
