package export

import (
	"strings"
	"testing"

	"feed-export-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAttr(attrs []models.Attribute, key string) *models.Attribute {
	for i := range attrs {
		if attrs[i].Key == key {
			return &attrs[i]
		}
	}
	return nil
}

func TestFilterableGroupsBecomeAttributes(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{
		ID: "p1",
		Properties: []models.PropertyGroupOption{
			{GroupName: "color", Value: "red", Filterable: true},
			{GroupName: "color", Value: "blue", Filterable: true},
			{GroupName: "material", Value: "cotton", Filterable: false},
		},
	}

	attrs, props := c.Classify(product, &CategoryResult{})

	color := findAttr(attrs, "color")
	require.NotNil(t, color)
	assert.Equal(t, []string{"red", "blue"}, color.Values)

	assert.Nil(t, findAttr(attrs, "material"))
	assert.Contains(t, props, models.Property{Key: "material", Value: "cotton"})
}

func TestCatAndVendorAttributes(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{ID: "p1", ManufacturerName: "ACME &amp; Co"}
	cats := &CategoryResult{Cats: []string{"Sub_SubOfSub"}, CatURLs: []string{"/navigation/sub"}}

	attrs, _ := c.Classify(product, cats)

	cat := findAttr(attrs, "cat")
	require.NotNil(t, cat)
	assert.Equal(t, []string{"Sub_SubOfSub"}, cat.Values)

	vendor := findAttr(attrs, "vendor")
	require.NotNil(t, vendor)
	assert.Equal(t, []string{"ACME & Co"}, vendor.Values)

	// cat_url is a direct-integration attribute only.
	assert.Nil(t, findAttr(attrs, "cat_url"))
}

func TestCatURLInDirectIntegration(t *testing.T) {
	ctx := testContext()
	ctx.IntegrationMode = IntegrationDirect
	c := NewClassifier(ctx)

	cats := &CategoryResult{CatURLs: []string{"/Sub", "/navigation/sub"}}
	attrs, _ := c.Classify(&models.Product{ID: "p1"}, cats)

	catURL := findAttr(attrs, "cat_url")
	require.NotNil(t, catURL)
	assert.Equal(t, []string{"/Sub", "/navigation/sub"}, catURL.Values)
}

func TestDefaultsAlwaysPresent(t *testing.T) {
	c := NewClassifier(testContext())

	attrs, _ := c.Classify(&models.Product{ID: "p1"}, &CategoryResult{})

	shippingFree := findAttr(attrs, "shipping_free")
	require.NotNil(t, shippingFree)
	assert.Equal(t, []string{"No"}, shippingFree.Values)

	rating := findAttr(attrs, "rating")
	require.NotNil(t, rating)
	assert.Equal(t, []string{"0.0"}, rating.Values)
}

func TestCustomFieldOverLimitIsDropped(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{
		ID: "p1",
		CustomFields: map[string]interface{}{
			"short": "ok",
			"long":  strings.Repeat("x", customFieldLengthLimit+1),
		},
	}

	attrs, _ := c.Classify(product, &CategoryResult{})

	assert.Nil(t, findAttr(attrs, "long"))
	short := findAttr(attrs, "short")
	require.NotNil(t, short)
	assert.Equal(t, []string{"ok"}, short.Values)
}

func TestNestedCustomFieldArrayIsDropped(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{
		ID: "p1",
		CustomFields: map[string]interface{}{
			"nested": []interface{}{[]interface{}{"x"}},
		},
	}

	attrs, _ := c.Classify(product, &CategoryResult{})
	assert.Nil(t, findAttr(attrs, "nested"))
}

func TestCustomFieldArrayFiltering(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{
		ID: "p1",
		CustomFields: map[string]interface{}{
			"sizes": []interface{}{"", nil, "0", "M &amp; L"},
		},
	}

	attrs, _ := c.Classify(product, &CategoryResult{})

	sizes := findAttr(attrs, "sizes")
	require.NotNil(t, sizes)
	assert.Equal(t, []string{"0", "M & L"}, sizes.Values)
}

func TestCustomFieldScalarConversion(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{
		ID: "p1",
		CustomFields: map[string]interface{}{
			"count":   float64(3),
			"premium": true,
		},
	}

	attrs, _ := c.Classify(product, &CategoryResult{})

	count := findAttr(attrs, "count")
	require.NotNil(t, count)
	assert.Equal(t, []string{"3"}, count.Values)

	premium := findAttr(attrs, "premium")
	require.NotNil(t, premium)
	assert.Equal(t, []string{"Yes"}, premium.Values)
}

func TestAPIKeySanitization(t *testing.T) {
	assert.Equal(t, "Tragehilfen", SanitizeKey("Tragehilfen!?", IntegrationAPI))
	assert.Equal(t, "Größe", SanitizeKey("Größe", IntegrationAPI))
	assert.Equal(t, "key:sub_part-1", SanitizeKey("key:sub_part-1", IntegrationAPI))
	assert.Equal(t, "spacedout", SanitizeKey("spaced out", IntegrationAPI))
}

func TestDirectKeysPassThrough(t *testing.T) {
	assert.Equal(t, "spaced out!", SanitizeKey("spaced out!", IntegrationDirect))
}

func TestDisplayProperties(t *testing.T) {
	c := NewClassifier(testContext())

	product := &models.Product{
		ID:          "p1",
		OrderNumber: "SW10001",
		EAN:         "4006381333931",
		Available:   true,
	}

	_, props := c.Classify(product, &CategoryResult{})

	assert.Contains(t, props, models.Property{Key: "ordernumber", Value: "SW10001"})
	assert.Contains(t, props, models.Property{Key: "ean", Value: "4006381333931"})
	assert.Contains(t, props, models.Property{Key: "availability", Value: "Yes"})
}
