package export

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"feed-export-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	categories map[string][]string
	err        error
}

func (s *stubLookup) CategoriesForStreams(_ context.Context, streamIDs []string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	var ids []string
	for _, streamID := range streamIDs {
		ids = append(ids, s.categories[streamID]...)
	}
	return ids, nil
}

func exportableProduct(id string) *models.Product {
	return &models.Product{
		ID:               id,
		Name:             "Product " + id,
		Active:           true,
		Available:        true,
		VisibleInChannel: true,
		ReleaseDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Prices:           []models.Price{{CurrencyID: "EUR", Gross: 11.9, Net: 10.0}},
		Categories: []models.Category{{
			ID:         "sub",
			Name:       "Sub",
			Active:     true,
			Path:       []string{"root", "sub"},
			Breadcrumb: []string{"Main", "Sub"},
		}},
	}
}

func TestAdaptBuildsRecord(t *testing.T) {
	a := NewItemAdapter(testContext(), nil)

	product := exportableProduct("p1")
	record, err := a.Adapt(context.Background(), product, nil)
	require.NoError(t, err)

	assert.Equal(t, "p1", record.ID)
	assert.Equal(t, "Product p1", record.Name)
	require.Len(t, record.Prices, 3)
	assert.Equal(t, 11.9, record.Prices[0].Value)

	cat := findAttr(record.Attributes, "cat")
	require.NotNil(t, cat)
	assert.Equal(t, []string{"Sub"}, cat.Values)
}

func TestAdaptNoName(t *testing.T) {
	a := NewItemAdapter(testContext(), nil)

	product := exportableProduct("p1")
	product.Name = "   "

	_, err := a.Adapt(context.Background(), product, nil)
	assert.ErrorIs(t, err, ErrNoName)

	var perr *ProductError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "p1", perr.ProductID)
}

func TestAdaptZeroPriceSkipped(t *testing.T) {
	a := NewItemAdapter(testContext(), nil)

	product := exportableProduct("p1")
	product.Prices = []models.Price{{CurrencyID: "EUR", Gross: 0, Net: 0}}

	_, err := a.Adapt(context.Background(), product, nil)
	assert.ErrorIs(t, err, ErrZeroPrice)
}

func TestAdaptZeroPriceExportedWhenEnabled(t *testing.T) {
	ctx := testContext()
	ctx.ExportZeroPriced = true
	a := NewItemAdapter(ctx, nil)

	product := exportableProduct("p1")
	product.Prices = []models.Price{{CurrencyID: "EUR", Gross: 0, Net: 0}}

	_, err := a.Adapt(context.Background(), product, nil)
	assert.NoError(t, err)
}

func TestOutOfStockSkippedByDefault(t *testing.T) {
	a := NewItemAdapter(testContext(), nil)

	product := exportableProduct("p1")
	product.Available = false

	_, err := a.Adapt(context.Background(), product, nil)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestOutOfStockExportedWhenVisible(t *testing.T) {
	ctx := testContext()
	ctx.ShowOutOfStock = true
	a := NewItemAdapter(ctx, nil)

	product := exportableProduct("p1")
	product.Available = false

	_, err := a.Adapt(context.Background(), product, nil)
	assert.NoError(t, err)
}

func TestCrossSellExclusionShortCircuits(t *testing.T) {
	ctx := testContext()
	ctx.CrossSellCategoryIDs = map[string]struct{}{"sub": {}}
	a := NewItemAdapter(ctx, nil)

	// The product would also fail the name check, but exclusion runs before
	// any resolver.
	product := exportableProduct("p1")
	product.Name = ""

	_, err := a.Adapt(context.Background(), product, nil)
	assert.ErrorIs(t, err, ErrCrossSellExcluded)
}

func TestDynamicCategoriesAreUnioned(t *testing.T) {
	lookup := &stubLookup{categories: map[string][]string{"stream-1": {"dyn"}}}
	a := NewItemAdapter(testContext(), lookup)

	index := map[string]models.Category{
		"dyn": {
			ID:         "dyn",
			Name:       "Derived",
			Active:     true,
			Path:       []string{"root", "dyn"},
			Breadcrumb: []string{"Main", "Derived"},
		},
	}

	product := exportableProduct("p1")
	product.StreamIDs = []string{"stream-1"}

	record, err := a.Adapt(context.Background(), product, index)
	require.NoError(t, err)

	cat := findAttr(record.Attributes, "cat")
	require.NotNil(t, cat)
	assert.ElementsMatch(t, []string{"Sub", "Derived"}, cat.Values)
}

func TestCacheFailureDegradesToDirectCategories(t *testing.T) {
	lookup := &stubLookup{err: errors.New("connection refused")}
	a := NewItemAdapter(testContext(), lookup)

	product := exportableProduct("p1")
	product.StreamIDs = []string{"stream-1"}

	record, err := a.Adapt(context.Background(), product, nil)
	require.NoError(t, err)

	cat := findAttr(record.Attributes, "cat")
	require.NotNil(t, cat)
	assert.Equal(t, []string{"Sub"}, cat.Values)
}

func TestBatchIsolation(t *testing.T) {
	a := NewItemAdapter(testContext(), nil)
	p := NewPipeline(a, 4)

	products := make([]*models.Product, 0, 5)
	for i := 0; i < 5; i++ {
		products = append(products, exportableProduct(fmt.Sprintf("p%d", i)))
	}
	products[2].Name = ""

	agg := NewAggregator()
	records := p.ProcessPage(context.Background(), products, nil, agg)

	assert.Len(t, records, 4)
	assert.Equal(t, 1, agg.ProductErrorCount())

	report := agg.Report()
	require.Len(t, report.Products, 1)
	assert.Equal(t, "p2", report.Products[0].ID)
	assert.Equal(t, []string{ErrNoName.Error()}, report.Products[0].Errors)
}

func TestPipelineOutputKeepsInputOrder(t *testing.T) {
	a := NewItemAdapter(testContext(), nil)
	p := NewPipeline(a, 8)

	products := make([]*models.Product, 0, 20)
	for i := 0; i < 20; i++ {
		products = append(products, exportableProduct(fmt.Sprintf("p%02d", i)))
	}

	records := p.ProcessPage(context.Background(), products, nil, NewAggregator())
	require.Len(t, records, 20)
	for i, record := range records {
		assert.Equal(t, fmt.Sprintf("p%02d", i), record.ID)
	}
}

func TestGeneralErrorsSurfaceInReport(t *testing.T) {
	agg := NewAggregator()
	agg.AddGeneral("No product found for id missing")

	assert.True(t, agg.HasErrors())
	report := agg.Report()
	assert.Equal(t, []string{"No product found for id missing"}, report.General)
	assert.Empty(t, report.Products)
}
