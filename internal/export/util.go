package export

import (
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"

	"feed-export-service/internal/models"
)

// apiKeyPattern keeps ASCII alphanumerics, colon, underscore, dash and German
// umlauts. Everything else is stripped, not replaced.
var apiKeyPattern = regexp.MustCompile(`[^A-Za-z0-9:_\-äöüÄÖÜß]`)

// Round2 rounds a price value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SanitizeKey reduces an attribute or property key to the character set the
// API integration accepts. Direct integration passes keys through unchanged.
func SanitizeKey(key string, mode IntegrationMode) string {
	if mode == IntegrationDirect {
		return key
	}
	return apiKeyPattern.ReplaceAllString(key, "")
}

// DecodeHTML resolves HTML entities in a value and trims surrounding space.
func DecodeHTML(v string) string {
	return strings.TrimSpace(html.UnescapeString(v))
}

// CleanValues removes empty strings from a value list while keeping literal
// zeros, then decodes HTML entities in the survivors.
func CleanValues(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		cleaned = append(cleaned, DecodeHTML(v))
	}
	return cleaned
}

// EncodePath percent-encodes each segment of a URL path, keeping the slashes.
func EncodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// FindPrice selects the price entry matching the given currency. When no
// entry matches, the first entry is returned as a documented permissive
// fallback. Returns false only for an empty price set.
func FindPrice(prices []models.Price, currencyID string) (models.Price, bool) {
	if len(prices) == 0 {
		return models.Price{}, false
	}
	for _, p := range prices {
		if p.CurrencyID == currencyID {
			return p, true
		}
	}
	return prices[0], true
}
