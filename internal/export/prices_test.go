package export

import (
	"testing"

	"feed-export-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceProjection(t *testing.T) {
	r := NewPriceResolver(testContext())

	prices := []models.Price{{CurrencyID: "EUR", Gross: 11.9, Net: 10.0}}

	projected, err := r.Resolve(prices)
	require.NoError(t, err)
	require.Len(t, projected, 3)

	assert.Equal(t, models.GroupedPrice{Value: 11.9}, projected[0])
	assert.Equal(t, models.GroupedPrice{UserGroup: "gross-group", Value: 11.9}, projected[1])
	assert.Equal(t, models.GroupedPrice{UserGroup: "net-group", Value: 10.0}, projected[2])
}

func TestPriceRounding(t *testing.T) {
	r := NewPriceResolver(testContext())

	prices := []models.Price{{CurrencyID: "EUR", Gross: 11.999, Net: 10.087}}

	projected, err := r.Resolve(prices)
	require.NoError(t, err)
	assert.Equal(t, 12.0, projected[0].Value)
	assert.Equal(t, 10.09, projected[2].Value)
}

func TestCurrencyFallbackToFirstEntry(t *testing.T) {
	r := NewPriceResolver(testContext())

	prices := []models.Price{
		{CurrencyID: "USD", Gross: 5.0, Net: 4.2},
		{CurrencyID: "GBP", Gross: 6.0, Net: 5.0},
	}

	projected, err := r.Resolve(prices)
	require.NoError(t, err)
	assert.Equal(t, 5.0, projected[0].Value)
}

func TestNoPrices(t *testing.T) {
	r := NewPriceResolver(testContext())

	_, err := r.Resolve(nil)
	assert.ErrorIs(t, err, ErrNoPrices)
}

func TestOverriddenPrice(t *testing.T) {
	r := NewPriceResolver(testContext())

	prices := []models.Price{{
		CurrencyID:   "EUR",
		Gross:        11.9,
		Net:          10.0,
		ListGross:    14.9,
		ListNet:      12.52,
		HasListPrice: true,
	}}

	projected, err := r.ResolveOverridden(prices)
	require.NoError(t, err)
	require.Len(t, projected, 3)
	assert.Equal(t, 14.9, projected[0].Value)
	assert.Equal(t, 14.9, projected[1].Value)
	assert.Equal(t, 12.52, projected[2].Value)
}

func TestOverriddenPriceSkippedWithoutListPrice(t *testing.T) {
	r := NewPriceResolver(testContext())

	prices := []models.Price{{CurrencyID: "EUR", Gross: 11.9, Net: 10.0}}

	projected, err := r.ResolveOverridden(prices)
	require.NoError(t, err)
	assert.Empty(t, projected)
}
