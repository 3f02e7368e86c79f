package models

import "time"

// ExportRecord is the normalized export item handed to the feed writer.
type ExportRecord struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Attributes       []Attribute    `json:"attributes"`
	Properties       []Property     `json:"properties,omitempty"`
	Prices           []GroupedPrice `json:"prices"`
	OverriddenPrices []GroupedPrice `json:"overridden_prices,omitempty"`
	Images           []Image        `json:"images,omitempty"`
	URL              string         `json:"url,omitempty"`
	DateAdded        time.Time      `json:"date_added"`
	Rating           float64        `json:"rating"`
	SalesFrequency   int            `json:"sales_frequency"`
	Keywords         []string       `json:"keywords,omitempty"`
}

// Attribute is a filterable key with one or more values.
type Attribute struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// Property is display-only metadata, never used for filtering.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GroupedPrice is one projected price value. An empty UserGroup marks the
// default price; otherwise the value belongs to that customer group.
type GroupedPrice struct {
	UserGroup string  `json:"user_group,omitempty"`
	Value     float64 `json:"value"`
}
