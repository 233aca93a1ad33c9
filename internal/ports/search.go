package ports

import (
	"context"

	"brandguard/internal/domain"
)

// SearchPage is one page of organic results for a query.
type SearchPage struct {
	OrganicResults      []domain.OrganicResult
	TotalOrganicResults int64
}

// SearchProvider runs one paginated web search. Failures should wrap
// domain.ErrProviderAuth when credentials are rejected.
type SearchProvider interface {
	Search(ctx context.Context, query, geolocation string, pageOffset int) (SearchPage, error)
}
