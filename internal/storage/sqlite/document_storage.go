package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

// DocumentStorage implements interfaces.DocumentStorage
type DocumentStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new document storage instance
func NewDocumentStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// InsertDocumentWithPages creates the document row and all page rows in one
// transaction. Page numbers are assigned 1..N from slice order; any failure
// rolls the whole unit back so no partial document is ever visible.
func (d *DocumentStorage) InsertDocumentWithPages(ctx context.Context, doc *models.Document, pages []*models.Page) error {
	tx, err := d.db.BeginTx(ctx)
	if err != nil {
		return &interfaces.StorageError{Op: "insert", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, created_at) VALUES (?, ?, ?)`,
		doc.ID, doc.Title, doc.CreatedAt.Unix(),
	)
	if err != nil {
		return &interfaces.StorageError{Op: "insert", Err: err}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (id, document_id, page_number, image_locator, ocr_text) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return &interfaces.StorageError{Op: "insert", Err: err}
	}
	defer stmt.Close()

	for i, page := range pages {
		page.DocumentID = doc.ID
		page.PageNumber = i + 1
		if _, err := stmt.ExecContext(ctx, page.ID, page.DocumentID, page.PageNumber, page.ImageLocator, page.OCRText); err != nil {
			return &interfaces.StorageError{Op: "insert", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &interfaces.StorageError{Op: "insert", Err: err}
	}

	d.logger.Debug().
		Str("doc_id", doc.ID).
		Int("pages", len(pages)).
		Msg("Document inserted with pages")
	return nil
}

// RenameDocument updates the title only. The id and creation timestamp are untouched.
func (d *DocumentStorage) RenameDocument(ctx context.Context, id, newTitle string) error {
	res, err := d.db.db.ExecContext(ctx, `UPDATE documents SET title = ? WHERE id = ?`, newTitle, id)
	if err != nil {
		return &interfaces.StorageError{Op: "rename", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &interfaces.StorageError{Op: "rename", Err: err}
	}
	if affected == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// DeleteDocument removes the document row; the pages cascade inside the same
// transaction. It returns the image locators the pages referenced so the
// caller can delete the backing blobs afterwards.
func (d *DocumentStorage) DeleteDocument(ctx context.Context, id string) ([]string, error) {
	tx, err := d.db.BeginTx(ctx)
	if err != nil {
		return nil, &interfaces.StorageError{Op: "delete", Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT image_locator FROM pages WHERE document_id = ?`, id)
	if err != nil {
		return nil, &interfaces.StorageError{Op: "delete", Err: err}
	}
	var locators []string
	for rows.Next() {
		var locator string
		if err := rows.Scan(&locator); err != nil {
			rows.Close()
			return nil, &interfaces.StorageError{Op: "delete", Err: err}
		}
		locators = append(locators, locator)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, &interfaces.StorageError{Op: "delete", Err: err}
	}
	rows.Close()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return nil, &interfaces.StorageError{Op: "delete", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &interfaces.StorageError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return nil, interfaces.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, &interfaces.StorageError{Op: "delete", Err: err}
	}

	d.logger.Debug().
		Str("doc_id", id).
		Int("pages", len(locators)).
		Msg("Document deleted with cascading pages")
	return locators, nil
}

// GetDocumentWithPages retrieves a document and its pages ordered by page number.
func (d *DocumentStorage) GetDocumentWithPages(ctx context.Context, id string) (*models.DocumentWithPages, error) {
	row := d.db.db.QueryRowContext(ctx, `SELECT id, title, created_at FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		return nil, &interfaces.StorageError{Op: "get", Err: err}
	}

	pages, err := d.loadPages(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	return &models.DocumentWithPages{Document: *doc, Pages: pages}, nil
}

// ListDocuments returns all documents ordered by creation timestamp descending.
func (d *DocumentStorage) ListDocuments(ctx context.Context) ([]*models.DocumentWithPages, error) {
	rows, err := d.db.db.QueryContext(ctx,
		`SELECT id, title, created_at FROM documents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, &interfaces.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	return d.collectDocuments(ctx, rows)
}

// SearchDocuments returns documents whose page text matches the FTS5 MATCH
// expression OR whose title contains rawQuery as a case-insensitive substring.
// Results are deduplicated and kept in creation-descending order; search does
// not rank by relevance.
func (d *DocumentStorage) SearchDocuments(ctx context.Context, ftsQuery, rawQuery string) ([]*models.DocumentWithPages, error) {
	rows, err := d.db.db.QueryContext(ctx, `
		SELECT id, title, created_at FROM documents
		WHERE id IN (
			SELECT p.document_id FROM pages p
			JOIN pages_fts pf ON p.rowid = pf.rowid
			WHERE pages_fts MATCH ?
		) OR instr(lower(title), lower(?)) > 0
		ORDER BY created_at DESC, id
	`, ftsQuery, rawQuery)
	if err != nil {
		return nil, &interfaces.StorageError{Op: "search", Err: err}
	}
	defer rows.Close()

	return d.collectDocuments(ctx, rows)
}

// CountDocuments returns the total number of documents.
func (d *DocumentStorage) CountDocuments(ctx context.Context) (int, error) {
	var count int
	if err := d.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, &interfaces.StorageError{Op: "count", Err: err}
	}
	return count, nil
}

// loadPages returns a document's pages ordered by page number ascending.
func (d *DocumentStorage) loadPages(ctx context.Context, documentID string) ([]*models.Page, error) {
	rows, err := d.db.db.QueryContext(ctx, `
		SELECT id, document_id, page_number, image_locator, COALESCE(ocr_text, '')
		FROM pages
		WHERE document_id = ?
		ORDER BY page_number ASC
	`, documentID)
	if err != nil {
		return nil, &interfaces.StorageError{Op: "get", Err: err}
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		page := &models.Page{}
		if err := rows.Scan(&page.ID, &page.DocumentID, &page.PageNumber, &page.ImageLocator, &page.OCRText); err != nil {
			return nil, &interfaces.StorageError{Op: "get", Err: err}
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, &interfaces.StorageError{Op: "get", Err: err}
	}
	return pages, nil
}

func (d *DocumentStorage) collectDocuments(ctx context.Context, rows *sql.Rows) ([]*models.DocumentWithPages, error) {
	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, &interfaces.StorageError{Op: "list", Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &interfaces.StorageError{Op: "list", Err: err}
	}

	result := make([]*models.DocumentWithPages, 0, len(docs))
	for _, doc := range docs {
		pages, err := d.loadPages(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.DocumentWithPages{Document: *doc, Pages: pages})
	}
	return result, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var createdAt int64
	if err := row.Scan(&doc.ID, &doc.Title, &createdAt); err != nil {
		return nil, err
	}
	doc.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &doc, nil
}
