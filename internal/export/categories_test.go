package export

import (
	"testing"

	"feed-export-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	root := models.Category{
		ID:         "root",
		Name:       "Main",
		Active:     true,
		Path:       []string{"root"},
		Breadcrumb: []string{"Main"},
	}
	groups := []models.CustomerGroup{
		{ID: "gross-group", DisplayGross: true},
		{ID: "net-group", DisplayGross: false},
	}
	ctx := NewContext("ABCD1234", root, groups, nil)
	ctx.CurrencyID = "EUR"
	ctx.SalesChannelID = "channel-1"
	return ctx
}

func TestBreadcrumbTrimming(t *testing.T) {
	r := NewCategoryResolver(testContext())

	cats := []models.Category{{
		ID:         "sub2",
		Name:       "SubOfSub",
		Active:     true,
		Path:       []string{"root", "sub1", "sub2"},
		Breadcrumb: []string{"Main", "Sub", "SubOfSub"},
	}}

	result, err := r.Resolve(cats, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sub_SubOfSub"}, result.Cats)
}

func TestBreadcrumbSegmentsAreTrimmed(t *testing.T) {
	r := NewCategoryResolver(testContext())

	cats := []models.Category{{
		ID:         "sub",
		Name:       " Sub ",
		Active:     true,
		Path:       []string{"root", "sub"},
		Breadcrumb: []string{"Main", " Sub "},
	}}

	result, err := r.Resolve(cats, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sub"}, result.Cats)
}

func TestCategoryOutsideRootIsExcluded(t *testing.T) {
	r := NewCategoryResolver(testContext())

	cats := []models.Category{
		{
			ID:         "foreign",
			Name:       "Landing",
			Active:     true,
			Path:       []string{"other-root", "foreign"},
			Breadcrumb: []string{"Other", "Landing"},
		},
		{
			ID:         "sub",
			Name:       "Sub",
			Active:     true,
			Path:       []string{"root", "sub"},
			Breadcrumb: []string{"Main", "Sub"},
		},
	}

	result, err := r.Resolve(cats, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sub"}, result.Cats)
}

func TestInactiveCategoryIsIgnored(t *testing.T) {
	r := NewCategoryResolver(testContext())

	cats := []models.Category{{
		ID:         "sub",
		Name:       "Sub",
		Active:     false,
		Path:       []string{"root", "sub"},
		Breadcrumb: []string{"Main", "Sub"},
	}}

	_, err := r.Resolve(cats, nil)
	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestNoUsableCategories(t *testing.T) {
	r := NewCategoryResolver(testContext())

	_, err := r.Resolve(nil, nil)
	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestBlankNameContributesURLOnly(t *testing.T) {
	r := NewCategoryResolver(testContext())

	cats := []models.Category{{
		ID:         "blank",
		Name:       "  ",
		Active:     true,
		Path:       []string{"root", "blank"},
		Breadcrumb: []string{"Main", "  "},
	}}

	result, err := r.Resolve(cats, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Cats)
	assert.Equal(t, []string{"/navigation/blank"}, result.CatURLs)
}

func TestCategoryURLs(t *testing.T) {
	ctx := testContext()
	r := NewCategoryResolver(ctx)

	index := map[string]models.Category{
		"sub1": {
			ID:       "sub1",
			Name:     "Sub",
			Active:   true,
			Path:     []string{"root", "sub1"},
			SeoPaths: []models.SeoPath{{SalesChannelID: "channel-1", Path: "Sub/"}},
		},
	}
	cats := []models.Category{{
		ID:         "sub2",
		Name:       "SubOfSub",
		Active:     true,
		Path:       []string{"root", "sub1", "sub2"},
		Breadcrumb: []string{"Main", "Sub", "SubOfSub"},
		SeoPaths: []models.SeoPath{
			{SalesChannelID: "channel-1", Path: "Sub/SubOfSub/"},
			{SalesChannelID: "other-channel", Path: "Other/Path/"},
		},
	}}

	result, err := r.Resolve(cats, index)
	require.NoError(t, err)
	assert.Equal(t, []string{"/Sub/SubOfSub", "/Sub", "/navigation/sub2"}, result.CatURLs)
}

func TestCategoryURLsWithDomainPrefix(t *testing.T) {
	ctx := testContext()
	ctx.DomainPrefix = "de"
	r := NewCategoryResolver(ctx)

	cats := []models.Category{{
		ID:         "sub",
		Name:       "Sub",
		Active:     true,
		Path:       []string{"root", "sub"},
		Breadcrumb: []string{"Main", "Sub"},
		SeoPaths:   []models.SeoPath{{Path: "Sub/"}},
	}}

	result, err := r.Resolve(cats, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/de/Sub", "/de/navigation/sub"}, result.CatURLs)
}

func TestDuplicateCategoriesAreDeduplicated(t *testing.T) {
	r := NewCategoryResolver(testContext())

	cat := models.Category{
		ID:         "sub",
		Name:       "Sub",
		Active:     true,
		Path:       []string{"root", "sub"},
		Breadcrumb: []string{"Main", "Sub"},
	}

	result, err := r.Resolve([]models.Category{cat, cat}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sub"}, result.Cats)
	assert.Equal(t, []string{"/navigation/sub"}, result.CatURLs)
}
