package search

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scandex/internal/interfaces"
	"github.com/ternarybob/scandex/internal/models"
)

// Service implements interfaces.SearchService on the document store's FTS5
// index and title column.
type Service struct {
	storage interfaces.DocumentStorage
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.SearchService = (*Service)(nil)

// NewService creates a new search service
func NewService(storage interfaces.DocumentStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Search filters documents for a query. A blank query behaves exactly like a
// full listing. Otherwise a document matches when any page's extracted text
// has a token starting with the query, or its title contains the query as a
// case-insensitive substring. Results keep the default creation-descending
// order; search filters, it does not rank.
func (s *Service) Search(ctx context.Context, query string) ([]*models.DocumentWithPages, error) {
	// NUL bytes terminate the string inside SQLite and cannot be quoted.
	trimmed := strings.TrimSpace(strings.ReplaceAll(query, "\x00", ""))
	if trimmed == "" {
		return s.storage.ListDocuments(ctx)
	}

	results, err := s.storage.SearchDocuments(ctx, EscapeQuery(trimmed), trimmed)
	if err != nil {
		s.logger.Error().Err(err).Str("query", trimmed).Msg("Search failed")
		return nil, err
	}

	s.logger.Debug().
		Str("query", trimmed).
		Int("results", len(results)).
		Msg("Search completed")
	return results, nil
}

// EscapeQuery converts user input into a prefix-phrase FTS5 MATCH expression.
// The term is quoted (embedded quotes doubled) so characters meaningful to
// the index syntax (-, ., *, NEAR, parentheses) are always literal; the
// trailing * makes it a prefix match on the final token. NUL bytes are
// dropped because no amount of quoting keeps them from truncating the MATCH
// expression.
func EscapeQuery(query string) string {
	query = strings.ReplaceAll(query, "\x00", "")
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"*`
}
