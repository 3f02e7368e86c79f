package export

import "feed-export-service/internal/models"

// IntegrationMode decides how attribute keys are sanitized and whether
// category URLs are exported.
type IntegrationMode string

const (
	IntegrationDirect IntegrationMode = "direct"
	IntegrationAPI    IntegrationMode = "api"
)

// MainVariantMode decides which entity represents a parent-with-variants group.
type MainVariantMode string

const (
	MainVariantDefault  MainVariantMode = "default"
	MainVariantParent   MainVariantMode = "main-parent"
	MainVariantCheapest MainVariantMode = "cheapest"
)

// AdvancedPricingMode mirrors the plugin configuration value. Only "off" and
// "cheapest" affect the pipeline; "unit" is accepted and treated as "off".
type AdvancedPricingMode string

const (
	AdvancedPricingOff      AdvancedPricingMode = "off"
	AdvancedPricingCheapest AdvancedPricingMode = "cheapest"
	AdvancedPricingUnit     AdvancedPricingMode = "unit"
)

// Context is the immutable per-run configuration snapshot. It is created once
// before a run and shared read-only by every resolver.
type Context struct {
	ShopKey              string
	SalesChannelID       string
	LanguageID           string
	CurrencyID           string
	NavigationRoot       models.Category
	CustomerGroups       []models.CustomerGroup
	IntegrationMode      IntegrationMode
	MainVariantMode      MainVariantMode
	AdvancedPricing      AdvancedPricingMode
	ExportZeroPriced     bool
	ShowOutOfStock       bool
	DomainPrefix         string
	CrossSellCategoryIDs map[string]struct{}
}

// NewContext builds a run context. The cross-selling id slice is copied into a
// set so membership checks during the run are O(1).
func NewContext(shopKey string, root models.Category, groups []models.CustomerGroup, crossSellIDs []string) *Context {
	set := make(map[string]struct{}, len(crossSellIDs))
	for _, id := range crossSellIDs {
		set[id] = struct{}{}
	}
	return &Context{
		ShopKey:              shopKey,
		NavigationRoot:       root,
		CustomerGroups:       groups,
		IntegrationMode:      IntegrationAPI,
		MainVariantMode:      MainVariantDefault,
		AdvancedPricing:      AdvancedPricingOff,
		CrossSellCategoryIDs: set,
	}
}

// IsCrossSellCategory reports whether the given category id is configured to
// exclude its products from the export.
func (c *Context) IsCrossSellCategory(id string) bool {
	_, ok := c.CrossSellCategoryIDs[id]
	return ok
}
