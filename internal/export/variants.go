package export

import "feed-export-service/internal/models"

// VariantSelector decides which concrete entity represents a
// parent-with-variants group in the feed. Selection never fails: every policy
// degrades to the product it was given.
type VariantSelector struct {
	ctx *Context
}

// NewVariantSelector creates a variant selector bound to a run context.
func NewVariantSelector(ctx *Context) *VariantSelector {
	return &VariantSelector{ctx: ctx}
}

// Select resolves the representative entity for the given product under the
// configured policy.
func (s *VariantSelector) Select(product *models.Product) *models.Product {
	switch s.ctx.MainVariantMode {
	case MainVariantParent:
		return s.selectMainParent(product)
	case MainVariantCheapest:
		return s.selectCheapest(product)
	default:
		// Platform default: upstream visibility rules already picked the
		// representative; no extra computation.
		return product
	}
}

// selectMainParent uses the per-product main variant setting. Without one, an
// inactive parent falls back to its first visible child.
func (s *VariantSelector) selectMainParent(product *models.Product) *models.Product {
	if product.MainVariantID != "" {
		if product.ID == product.MainVariantID {
			return product
		}
		for _, child := range product.Children {
			if child.ID == product.MainVariantID {
				return child
			}
		}
		return product
	}

	if !product.Active {
		for _, child := range product.Children {
			if child.VisibleInChannel {
				return child
			}
		}
	}
	return product
}

// selectCheapest compares the parent's own gross price against the cheapest
// eligible child. The parent wins ties and wins outright when no child is
// eligible.
func (s *VariantSelector) selectCheapest(product *models.Product) *models.Product {
	cheapestChild := s.cheapestChild(product)
	if cheapestChild == nil {
		return product
	}

	parentGross := s.gross(product)
	childGross := s.gross(cheapestChild)

	if parentGross != 0 && parentGross <= childGross {
		return product
	}
	return cheapestChild
}

// cheapestChild returns the lowest-gross-price child that is active, visible
// in the current sales channel and carries a non-zero price. Earlier children
// win price ties, which keeps repeated selection over the same input stable.
func (s *VariantSelector) cheapestChild(product *models.Product) *models.Product {
	var cheapest *models.Product
	var cheapestGross float64

	for _, child := range product.Children {
		if !child.Active || !child.VisibleInChannel {
			continue
		}
		gross := s.gross(child)
		if gross == 0 {
			continue
		}
		if cheapest == nil || gross < cheapestGross {
			cheapest = child
			cheapestGross = gross
		}
	}
	return cheapest
}

func (s *VariantSelector) gross(product *models.Product) float64 {
	price, ok := FindPrice(product.Prices, s.ctx.CurrencyID)
	if !ok {
		return 0
	}
	return price.Gross
}
