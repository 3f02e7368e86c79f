package searcher

import (
	"context"

	"feed-export-service/internal/models"
)

// ProductPage is one page of hydrated product aggregates. Categories indexes
// every category referenced by the page, assigned ones and their ancestors,
// so resolvers can look up entities by id.
type ProductPage struct {
	Products   []*models.Product
	Total      int
	Categories map[string]models.Category
}

// ProductSearcher returns fully hydrated product aggregates. A non-empty
// productID restricts the page to that single product.
type ProductSearcher interface {
	FetchProducts(ctx context.Context, limit, offset int, productID string) (*ProductPage, error)
}
