package export

import (
	"math"
	"sort"
	"strconv"

	"feed-export-service/internal/models"
)

// customFieldLengthLimit is the maximum accepted length for a custom-field
// value. Longer values are dropped entirely, never truncated.
const customFieldLengthLimit = 13500

// Classifier partitions product facets into filterable attributes and
// display-only properties.
type Classifier struct {
	ctx *Context
}

// NewClassifier creates a classifier bound to a run context.
func NewClassifier(ctx *Context) *Classifier {
	return &Classifier{ctx: ctx}
}

// Classify builds the attribute and property lists for one product. The
// category facet must already be resolved; its values feed the cat and
// cat_url attributes. Facets with missing data are skipped silently; the
// only errors a record can fail on are raised by the category, price and name
// checks elsewhere.
func (c *Classifier) Classify(product *models.Product, cats *CategoryResult) ([]models.Attribute, []models.Property) {
	attrs := newAttributeSet()
	var props []models.Property

	for _, option := range product.Properties {
		key := SanitizeKey(option.GroupName, c.ctx.IntegrationMode)
		if key == "" || option.Value == "" {
			continue
		}
		value := DecodeHTML(option.Value)
		if option.Filterable {
			attrs.add(key, value)
		} else {
			props = append(props, models.Property{Key: key, Value: value})
		}
	}

	for _, cat := range cats.Cats {
		attrs.add("cat", cat)
	}
	if c.ctx.IntegrationMode == IntegrationDirect {
		for _, u := range cats.CatURLs {
			attrs.add("cat_url", u)
		}
	}

	if product.ManufacturerName != "" {
		attrs.add("vendor", DecodeHTML(product.ManufacturerName))
	}

	c.classifyCustomFields(product.CustomFields, attrs)

	attrs.add("shipping_free", boolToken(product.ShippingFree))
	attrs.add("rating", formatRating(product.Rating))

	props = append(props, c.displayProperties(product)...)

	return attrs.list(), props
}

// classifyCustomFields turns each top-level custom-field key into one
// attribute. Values above the length limit and nested array values are
// dropped; array entries are cleaned of null/empty elements ("0" survives)
// and decoded from HTML entities. Keys are sorted so the output is stable.
func (c *Classifier) classifyCustomFields(fields map[string]interface{}, attrs *attributeSet) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := SanitizeKey(k, c.ctx.IntegrationMode)
		if key == "" {
			continue
		}
		for _, v := range customFieldValues(fields[k]) {
			attrs.add(key, v)
		}
	}
}

// customFieldValues converts one custom-field value into exportable strings.
// An empty result means the field is dropped.
func customFieldValues(value interface{}) []string {
	switch v := value.(type) {
	case string:
		if v == "" || len(v) > customFieldLengthLimit {
			return nil
		}
		return []string{DecodeHTML(v)}
	case bool:
		return []string{boolToken(v)}
	case int:
		return []string{strconv.Itoa(v)}
	case int64:
		return []string{strconv.FormatInt(v, 10)}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case []string:
		return CleanValues(v)
	case []interface{}:
		flat := make([]string, 0, len(v))
		for _, item := range v {
			switch inner := item.(type) {
			case nil:
				continue
			case string:
				flat = append(flat, inner)
			case bool:
				flat = append(flat, boolToken(inner))
			case int:
				flat = append(flat, strconv.Itoa(inner))
			case int64:
				flat = append(flat, strconv.FormatInt(inner, 10))
			case float64:
				flat = append(flat, strconv.FormatFloat(inner, 'f', -1, 64))
			default:
				// Multi-dimensional values are dropped entirely.
				return nil
			}
		}
		return CleanValues(flat)
	default:
		return nil
	}
}

// displayProperties emits standard informational fields next to the
// non-filterable group options.
func (c *Classifier) displayProperties(product *models.Product) []models.Property {
	mode := c.ctx.IntegrationMode
	var props []models.Property

	add := func(key, value string) {
		if value == "" {
			return
		}
		props = append(props, models.Property{Key: SanitizeKey(key, mode), Value: value})
	}

	add("ordernumber", product.OrderNumber)
	add("ean", product.EAN)
	add("manufacturernumber", product.ManufacturerNumber)
	if product.Weight > 0 {
		add("weight", strconv.FormatFloat(product.Weight, 'f', -1, 64))
	}
	add("availability", boolToken(product.Available))

	return props
}

func boolToken(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatRating renders a rating with at least one decimal place, so the
// default surfaces as "0.0".
func formatRating(v float64) string {
	if math.Trunc(v) == v {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// attributeSet accumulates attribute values per key while keeping first-seen
// key order and deduplicating values.
type attributeSet struct {
	order []string
	byKey map[string]*models.Attribute
	seen  map[string]map[string]struct{}
}

func newAttributeSet() *attributeSet {
	return &attributeSet{
		byKey: make(map[string]*models.Attribute),
		seen:  make(map[string]map[string]struct{}),
	}
}

func (s *attributeSet) add(key, value string) {
	if key == "" || value == "" {
		return
	}
	attr, ok := s.byKey[key]
	if !ok {
		attr = &models.Attribute{Key: key}
		s.byKey[key] = attr
		s.seen[key] = make(map[string]struct{})
		s.order = append(s.order, key)
	}
	if _, dup := s.seen[key][value]; dup {
		return
	}
	s.seen[key][value] = struct{}{}
	attr.Values = append(attr.Values, value)
}

func (s *attributeSet) list() []models.Attribute {
	out := make([]models.Attribute, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.byKey[key])
	}
	return out
}
