package export

import "feed-export-service/internal/models"

// PriceResolver projects a product's price set onto the customer groups of
// the run.
type PriceResolver struct {
	ctx *Context
}

// NewPriceResolver creates a price resolver bound to a run context.
func NewPriceResolver(ctx *Context) *PriceResolver {
	return &PriceResolver{ctx: ctx}
}

// Resolve emits one default (ungrouped) gross value plus one value per
// customer group: gross when the group displays gross prices, net otherwise.
// All values are rounded to two decimals.
//
// Returns ErrNoPrices for an empty price set; a price is mandatory for
// export.
func (r *PriceResolver) Resolve(prices []models.Price) ([]models.GroupedPrice, error) {
	price, ok := FindPrice(prices, r.ctx.CurrencyID)
	if !ok {
		return nil, ErrNoPrices
	}
	return r.project(price.Gross, price.Net), nil
}

// ResolveOverridden performs the same projection for the list ("was") price.
// A product without a list price yields an empty result, not an error: the
// overridden price is an optional facet.
func (r *PriceResolver) ResolveOverridden(prices []models.Price) ([]models.GroupedPrice, error) {
	price, ok := FindPrice(prices, r.ctx.CurrencyID)
	if !ok {
		return nil, ErrNoPrices
	}
	if !price.HasListPrice {
		return nil, nil
	}
	return r.project(price.ListGross, price.ListNet), nil
}

func (r *PriceResolver) project(gross, net float64) []models.GroupedPrice {
	projected := make([]models.GroupedPrice, 0, len(r.ctx.CustomerGroups)+1)
	projected = append(projected, models.GroupedPrice{Value: Round2(gross)})

	for _, group := range r.ctx.CustomerGroups {
		value := net
		if group.DisplayGross {
			value = gross
		}
		projected = append(projected, models.GroupedPrice{
			UserGroup: group.ID,
			Value:     Round2(value),
		})
	}
	return projected
}
