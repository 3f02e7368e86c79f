package export

import (
	"testing"

	"feed-export-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func priced(id string, gross float64) *models.Product {
	return &models.Product{
		ID:               id,
		Name:             id,
		Active:           true,
		VisibleInChannel: true,
		Prices:           []models.Price{{CurrencyID: "EUR", Gross: gross, Net: gross / 1.19}},
	}
}

func TestPlatformDefaultKeepsProduct(t *testing.T) {
	s := NewVariantSelector(testContext())

	parent := priced("parent", 20)
	parent.Children = []*models.Product{priced("child", 10)}

	assert.Equal(t, "parent", s.Select(parent).ID)
}

func TestMainParentUsesConfiguredVariant(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantParent
	s := NewVariantSelector(ctx)

	parent := priced("parent", 20)
	parent.MainVariantID = "child-2"
	parent.Children = []*models.Product{priced("child-1", 10), priced("child-2", 15)}

	assert.Equal(t, "child-2", s.Select(parent).ID)
}

func TestMainParentInactiveFallsBackToFirstVisibleChild(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantParent
	s := NewVariantSelector(ctx)

	hidden := priced("hidden", 10)
	hidden.VisibleInChannel = false

	parent := priced("parent", 20)
	parent.Active = false
	parent.Children = []*models.Product{hidden, priced("visible", 15)}

	assert.Equal(t, "visible", s.Select(parent).ID)
}

func TestCheapestPrefersCheaperChild(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantCheapest
	s := NewVariantSelector(ctx)

	parent := priced("parent", 20)
	parent.Children = []*models.Product{priced("child-1", 12), priced("child-2", 8)}

	assert.Equal(t, "child-2", s.Select(parent).ID)
}

func TestCheapestParentWinsTies(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantCheapest
	s := NewVariantSelector(ctx)

	parent := priced("parent", 10)
	parent.Children = []*models.Product{priced("child", 10)}

	assert.Equal(t, "parent", s.Select(parent).ID)
}

func TestCheapestSkipsIneligibleChildren(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantCheapest
	s := NewVariantSelector(ctx)

	inactive := priced("inactive", 1)
	inactive.Active = false
	invisible := priced("invisible", 2)
	invisible.VisibleInChannel = false
	free := priced("free", 0)

	parent := priced("parent", 20)
	parent.Children = []*models.Product{inactive, invisible, free, priced("eligible", 15)}

	assert.Equal(t, "eligible", s.Select(parent).ID)
}

func TestCheapestWithoutChildrenKeepsParent(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantCheapest
	s := NewVariantSelector(ctx)

	parent := priced("parent", 20)

	assert.Equal(t, "parent", s.Select(parent).ID)
}

func TestCheapestSelectionIsIdempotent(t *testing.T) {
	ctx := testContext()
	ctx.MainVariantMode = MainVariantCheapest
	s := NewVariantSelector(ctx)

	parent := priced("parent", 20)
	parent.Children = []*models.Product{priced("child-1", 8), priced("child-2", 8), priced("child-3", 12)}

	first := s.Select(parent).ID
	second := s.Select(parent).ID
	assert.Equal(t, first, second)
	assert.Equal(t, "child-1", first)
}
