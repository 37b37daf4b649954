package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/common"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

var errNoPages = errors.New("document has no pages")

// Service implements interfaces.ExportService: it renders a document's pages
// into a single multi-page PDF in the export cache directory.
type Service struct {
	storage  interfaces.DocumentStorage
	blobs    interfaces.BlobStore
	cacheDir string
	logger   arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ExportService = (*Service)(nil)

// NewService creates a new export service. The cache directory is created if
// missing.
func NewService(
	storage interfaces.DocumentStorage,
	blobs interfaces.BlobStore,
	config *common.ExportConfig,
	logger arbor.ILogger,
) (*Service, error) {
	if err := os.MkdirAll(config.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export cache dir: %w", err)
	}
	return &Service{
		storage:  storage,
		blobs:    blobs,
		cacheDir: config.CacheDir,
		logger:   logger,
	}, nil
}

// Export renders the document's pages, ordered by page number ascending, into
// one PDF sized per source image (pixels map 1:1 to points). Any page failure
// aborts the export; no partial artifact is left behind. The finished artifact
// is validated before its path is returned.
func (s *Service) Export(ctx context.Context, documentID string) (string, error) {
	doc, err := s.storage.GetDocumentWithPages(ctx, documentID)
	if err != nil {
		return "", err
	}
	if len(doc.Pages) == 0 {
		return "", &interfaces.ExportError{DocumentID: documentID, Err: errNoPages}
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: 595.28, Ht: 841.89},
	})
	pdf.SetTitle(doc.Title, true)
	pdf.SetAutoPageBreak(false, 0)

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return "", &interfaces.ExportError{DocumentID: documentID, Page: page.PageNumber, Err: err}
		}
		if err := s.renderPage(pdf, page); err != nil {
			return "", &interfaces.ExportError{DocumentID: documentID, Page: page.PageNumber, Err: err}
		}
	}
	if pdf.Err() {
		return "", &interfaces.ExportError{DocumentID: documentID, Err: pdf.Error()}
	}

	path, err := s.writeArtifact(documentID, pdf)
	if err != nil {
		return "", &interfaces.ExportError{DocumentID: documentID, Err: err}
	}

	if err := api.ValidateFile(path, nil); err != nil {
		os.Remove(path)
		return "", &interfaces.ExportError{DocumentID: documentID, Err: fmt.Errorf("artifact failed validation: %w", err)}
	}

	s.logger.Info().
		Str("doc_id", documentID).
		Int("pages", len(doc.Pages)).
		Str("path", path).
		Msg("Document exported")
	return path, nil
}

// renderPage reads one page image and places it on a PDF page sized exactly to
// the image. The decoded image is released before the next page is read.
func (s *Service) renderPage(pdf *fpdf.Fpdf, page *models.Page) error {
	rc, err := s.blobs.Open(page.ImageLocator)
	if err != nil {
		return fmt.Errorf("failed to open page image: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("failed to read page image: %w", err)
	}

	img, err := loadPageImage(data)
	if err != nil {
		return err
	}

	w := float64(img.width)
	h := float64(img.height)
	orientation := "P"
	size := fpdf.SizeType{Wd: w, Ht: h}
	if w > h {
		orientation = "L"
		size = fpdf.SizeType{Wd: h, Ht: w}
	}
	pdf.AddPageFormat(orientation, size)

	opts := fpdf.ImageOptions{ImageType: img.imgType, ReadDpi: false}
	pdf.RegisterImageOptionsReader(page.ID, opts, bytes.NewReader(img.data))
	pdf.ImageOptions(page.ID, 0, 0, w, h, false, opts, 0, "")

	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return fmt.Errorf("failed to place page image: %w", err)
	}
	return nil
}

// writeArtifact persists the rendered PDF to the cache dir as
// <document-id>.pdf via a temp file and rename, so a concurrent reader never
// sees a half-written artifact.
func (s *Service) writeArtifact(documentID string, pdf *fpdf.Fpdf) (string, error) {
	tmp, err := os.CreateTemp(s.cacheDir, documentID+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()

	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp artifact: %w", err)
	}

	path := filepath.Join(s.cacheDir, documentID+".pdf")
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return path, nil
}
