package sqlite

const schemaSQL = `
-- Documents: one row per scanned document
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at DESC);

-- Pages: ordered page images belonging to exactly one document.
-- The cascade is a database-level guarantee, not an application loop.
CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	page_number INTEGER NOT NULL,
	image_locator TEXT NOT NULL,
	ocr_text TEXT,
	UNIQUE(document_id, page_number)
);

CREATE INDEX IF NOT EXISTS idx_pages_document ON pages(document_id);

-- FTS5 index over extracted page text (external content table).
CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
	ocr_text,
	content=pages,
	content_rowid=rowid
);

-- Triggers keep the FTS index in sync inside the writing transaction, so the
-- index never diverges from committed page rows.
CREATE TRIGGER IF NOT EXISTS pages_fts_insert AFTER INSERT ON pages BEGIN
	INSERT INTO pages_fts(rowid, ocr_text) VALUES (new.rowid, new.ocr_text);
END;

CREATE TRIGGER IF NOT EXISTS pages_fts_update AFTER UPDATE ON pages BEGIN
	INSERT INTO pages_fts(pages_fts, rowid, ocr_text) VALUES ('delete', old.rowid, old.ocr_text);
	INSERT INTO pages_fts(rowid, ocr_text) VALUES (new.rowid, new.ocr_text);
END;

CREATE TRIGGER IF NOT EXISTS pages_fts_delete AFTER DELETE ON pages BEGIN
	INSERT INTO pages_fts(pages_fts, rowid, ocr_text) VALUES ('delete', old.rowid, old.ocr_text);
END;
`

// InitSchema initializes the database schema
func (s *SQLiteDB) InitSchema() error {
	_, err := s.db.Exec(schemaSQL)
	if err != nil {
		return err
	}
	s.logger.Debug().Msg("Database schema initialized")
	return nil
}
