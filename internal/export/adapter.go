package export

import (
	"context"
	"strings"

	"feed-export-service/internal/models"
	"feed-export-service/internal/util"

	"go.uber.org/zap"
)

// DynamicGroupLookup resolves saved-rule stream ids to the category ids they
// currently map to. A nil lookup disables dynamic enrichment.
type DynamicGroupLookup interface {
	CategoriesForStreams(ctx context.Context, streamIDs []string) ([]string, error)
}

// ItemAdapter turns one product aggregate into one normalized export record.
// It owns no business rules of its own: it sequences the variant selector and
// the facet resolvers and converts their mandatory-facet failures into
// per-product errors.
type ItemAdapter struct {
	ctx        *Context
	selector   *VariantSelector
	prices     *PriceResolver
	categories *CategoryResolver
	classifier *Classifier
	dynamic    DynamicGroupLookup
	logger     *zap.Logger
}

// NewItemAdapter wires an adapter with the standard resolver set.
func NewItemAdapter(ctx *Context, dynamic DynamicGroupLookup) *ItemAdapter {
	return &ItemAdapter{
		ctx:        ctx,
		selector:   NewVariantSelector(ctx),
		prices:     NewPriceResolver(ctx),
		categories: NewCategoryResolver(ctx),
		classifier: NewClassifier(ctx),
		dynamic:    dynamic,
		logger:     util.GetLogger(),
	}
}

// Adapt builds the export record for one product. All failures are returned
// as *ProductError keyed by the input product id; they abort only this
// product, never the page.
func (a *ItemAdapter) Adapt(ctx context.Context, product *models.Product, index map[string]models.Category) (*models.ExportRecord, error) {
	dynamicIDs := a.dynamicCategoryIDs(ctx, product)

	// Cross-selling exclusion runs before any resolver: matching products
	// are skipped without paying for resolution.
	if a.matchesCrossSell(product, dynamicIDs) {
		return nil, &ProductError{ProductID: product.ID, Err: ErrCrossSellExcluded}
	}

	entity := a.selector.Select(product)

	if !a.ctx.ShowOutOfStock && !entity.Available {
		return nil, &ProductError{ProductID: product.ID, Err: ErrOutOfStock}
	}

	if strings.TrimSpace(entity.Name) == "" {
		return nil, &ProductError{ProductID: product.ID, Err: ErrNoName}
	}

	prices, err := a.prices.Resolve(entity.Prices)
	if err != nil {
		return nil, &ProductError{ProductID: product.ID, Err: err}
	}
	if !a.ctx.ExportZeroPriced && prices[0].Value == 0 {
		return nil, &ProductError{ProductID: product.ID, Err: ErrZeroPrice}
	}
	overridden, _ := a.prices.ResolveOverridden(entity.Prices)

	cats, err := a.categories.Resolve(a.assignedCategories(entity, product, dynamicIDs, index), index)
	if err != nil {
		return nil, &ProductError{ProductID: product.ID, Err: err}
	}

	attrs, props := a.classifier.Classify(entity, cats)

	record := &models.ExportRecord{
		ID:               entity.ID,
		Name:             entity.Name,
		Description:      entity.Description,
		Attributes:       attrs,
		Properties:       props,
		Prices:           prices,
		OverriddenPrices: overridden,
		Images:           entity.Images,
		URL:              entity.URL,
		DateAdded:        entity.ReleaseDate,
		Rating:           entity.Rating,
		SalesFrequency:   entity.SalesCount,
		Keywords:         entity.Keywords,
	}
	return record, nil
}

// dynamicCategoryIDs looks up rule-derived categories. Cache unavailability
// degrades accuracy, never the export: errors are logged and an empty set is
// used.
func (a *ItemAdapter) dynamicCategoryIDs(ctx context.Context, product *models.Product) []string {
	if a.dynamic == nil || len(product.StreamIDs) == 0 {
		return nil
	}
	ids, err := a.dynamic.CategoriesForStreams(ctx, product.StreamIDs)
	if err != nil {
		a.logger.Warn("Dynamic group lookup failed, exporting without derived categories",
			zap.String("product_id", product.ID),
			zap.Error(err))
		return nil
	}
	return ids
}

// matchesCrossSell reports whether any direct or dynamic category of the
// product is in the configured exclusion set.
func (a *ItemAdapter) matchesCrossSell(product *models.Product, dynamicIDs []string) bool {
	if len(a.ctx.CrossSellCategoryIDs) == 0 {
		return false
	}
	for _, cat := range product.Categories {
		if a.ctx.IsCrossSellCategory(cat.ID) {
			return true
		}
	}
	for _, id := range dynamicIDs {
		if a.ctx.IsCrossSellCategory(id) {
			return true
		}
	}
	return false
}

// assignedCategories unions the selected entity's direct categories with the
// rule-derived ones. Variants without own category assignments inherit the
// parent's set. Dynamic ids without a hydrated category entity are skipped.
func (a *ItemAdapter) assignedCategories(entity, parent *models.Product, dynamicIDs []string, index map[string]models.Category) []models.Category {
	direct := entity.Categories
	if len(direct) == 0 {
		direct = parent.Categories
	}

	combined := make([]models.Category, 0, len(direct)+len(dynamicIDs))
	combined = append(combined, direct...)
	for _, id := range dynamicIDs {
		if cat, ok := index[id]; ok {
			combined = append(combined, cat)
		}
	}
	return combined
}
