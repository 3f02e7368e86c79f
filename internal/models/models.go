package models

import "time"

// Product represents one catalog product as loaded by the searcher.
// All relations (categories, properties, prices, children) are pre-hydrated;
// the export pipeline treats the aggregate as read-only.
type Product struct {
	ID                 string                 `db:"id" json:"id"`
	ParentID           string                 `db:"parent_id" json:"parent_id,omitempty"`
	Name               string                 `db:"name" json:"name"`
	Description        string                 `db:"description" json:"description"`
	OrderNumber        string                 `db:"order_number" json:"order_number"`
	EAN                string                 `db:"ean" json:"ean,omitempty"`
	ManufacturerNumber string                 `db:"manufacturer_number" json:"manufacturer_number,omitempty"`
	ManufacturerName   string                 `db:"manufacturer_name" json:"manufacturer_name,omitempty"`
	Active             bool                   `db:"active" json:"active"`
	Available          bool                   `db:"available" json:"available"`
	Stock              int                    `db:"stock" json:"stock"`
	ShippingFree       bool                   `db:"shipping_free" json:"shipping_free"`
	Weight             float64                `db:"weight" json:"weight,omitempty"`
	Width              float64                `db:"width" json:"width,omitempty"`
	Height             float64                `db:"height" json:"height,omitempty"`
	Length             float64                `db:"length" json:"length,omitempty"`
	ReleaseDate        time.Time              `db:"release_date" json:"release_date"`
	Rating             float64                `db:"rating" json:"rating"`
	SalesCount         int                    `db:"sales_count" json:"sales_count"`
	MainVariantID      string                 `db:"main_variant_id" json:"main_variant_id,omitempty"`
	VisibleInChannel   bool                   `db:"visible" json:"visible"`
	URL                string                 `db:"url" json:"url"`
	Keywords           []string               `json:"keywords,omitempty"`
	Categories         []Category             `json:"categories,omitempty"`
	Properties         []PropertyGroupOption  `json:"properties,omitempty"`
	Prices             []Price                `json:"prices,omitempty"`
	Images             []Image                `json:"images,omitempty"`
	Children           []*Product             `json:"children,omitempty"`
	StreamIDs          []string               `json:"stream_ids,omitempty"`
	CustomFields       map[string]interface{} `json:"custom_fields,omitempty"`
}

// Category represents a catalog category with its materialized ancestor chain.
// Path holds ancestor ids root-first, including the category itself as the
// last element. Breadcrumb holds the matching ancestor names.
type Category struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Active     bool      `db:"active" json:"active"`
	Path       []string  `json:"path"`
	Breadcrumb []string  `json:"breadcrumb"`
	SeoPaths   []SeoPath `json:"seo_paths,omitempty"`
}

// SeoPath is a sales-channel scoped SEO URL path for a category.
type SeoPath struct {
	SalesChannelID string `db:"sales_channel_id" json:"sales_channel_id"`
	Path           string `db:"path" json:"path"`
}

// Price is one currency entry of a product's price set. List price is the
// optional "was" price shown next to the live price.
type Price struct {
	CurrencyID   string  `db:"currency_id" json:"currency_id"`
	Gross        float64 `db:"gross" json:"gross"`
	Net          float64 `db:"net" json:"net"`
	ListGross    float64 `db:"list_gross" json:"list_gross,omitempty"`
	ListNet      float64 `db:"list_net" json:"list_net,omitempty"`
	HasListPrice bool    `db:"has_list_price" json:"has_list_price"`
}

// PropertyGroupOption is one option value of a property group. Filterable
// mirrors the group-level flag that decides attribute vs. property.
type PropertyGroupOption struct {
	GroupID    string `db:"group_id" json:"group_id"`
	GroupName  string `db:"group_name" json:"group_name"`
	Value      string `db:"value" json:"value"`
	Filterable bool   `db:"filterable" json:"filterable"`
}

// CustomerGroup drives the per-group price projection. DisplayGross decides
// whether the group sees gross or net values.
type CustomerGroup struct {
	ID           string `db:"id" json:"id"`
	DisplayGross bool   `db:"display_gross" json:"display_gross"`
}

// Image is one product image; the first image in a product's list is the cover.
type Image struct {
	URL string `db:"url" json:"url"`
}

// ProductStream is a saved dynamic selection rule that resolves to a set of
// categories. Membership is evaluated during warm-up, never during export.
type ProductStream struct {
	ID          string   `db:"id" json:"id"`
	CategoryIDs []string `json:"category_ids"`
}
