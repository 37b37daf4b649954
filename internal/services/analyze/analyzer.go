package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
)

const (
	// minTitleLength is the trimmed length a line must exceed to qualify as a title.
	minTitleLength = 5
	// maxTitleLength is the truncation limit applied to a derived title.
	maxTitleLength = 50
)

// Result carries the extracted text and derived title for a scan.
type Result struct {
	FullText string
	Title    string
}

// Analyzer runs text extraction on a scan's first page and derives a title
// from the result. Extraction is best-effort: a failed extraction degrades to
// empty text and the timestamp-fallback title, it never fails the scan.
type Analyzer struct {
	extractor interfaces.TextExtractor
	logger    arbor.ILogger
}

// NewAnalyzer creates a new analyzer around the injected text extractor.
func NewAnalyzer(extractor interfaces.TextExtractor, logger arbor.ILogger) *Analyzer {
	return &Analyzer{
		extractor: extractor,
		logger:    logger,
	}
}

// AnalyzeFirstPage extracts text from the first page's image and derives a
// document title from it.
func (a *Analyzer) AnalyzeFirstPage(ctx context.Context, imageLocator string) Result {
	text, err := a.extractor.Extract(ctx, imageLocator)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("locator", imageLocator).
			Msg("Text extraction failed, continuing with empty text")
		text = ""
	}

	return Result{
		FullText: text,
		Title:    DeriveTitle(text),
	}
}

// DeriveTitle selects the first line of the extracted text that looks like a
// real heading: trimmed length over 5 characters with at least one interior
// space. The winner is trimmed and truncated to 50 characters. When no line
// qualifies, a timestamped default keeps the title unique and non-blank.
// Deterministic for identical input except the fallback branch.
func DeriveTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > minTitleLength && strings.Contains(trimmed, " ") {
			return truncate(trimmed, maxTitleLength)
		}
	}
	return fmt.Sprintf("Scan - %d", time.Now().UnixMilli())
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
