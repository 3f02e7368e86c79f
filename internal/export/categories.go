package export

import (
	"fmt"
	"strings"

	"feed-export-service/internal/models"
)

// CategoryResult carries the category facet of one product: the readable
// breadcrumb values and the URL paths the provider uses for navigation.
type CategoryResult struct {
	Cats    []string
	CatURLs []string
}

// CategoryResolver trims category breadcrumbs against the configured
// navigation root and assembles category URLs.
type CategoryResolver struct {
	ctx *Context
}

// NewCategoryResolver creates a category resolver bound to a run context.
func NewCategoryResolver(ctx *Context) *CategoryResolver {
	return &CategoryResolver{ctx: ctx}
}

// Resolve filters the given categories down to the usable set (active, below
// the navigation root, deduplicated by id) and produces the cat / cat_url
// values. The index maps category ids to entities so ancestor SEO paths can
// be looked up; missing ancestors are skipped silently.
//
// Returns ErrNoCategories when no usable category remains: category
// assignment is mandatory for export.
func (r *CategoryResolver) Resolve(categories []models.Category, index map[string]models.Category) (*CategoryResult, error) {
	usable := r.usable(categories)
	if len(usable) == 0 {
		return nil, ErrNoCategories
	}

	result := &CategoryResult{}
	seenCat := make(map[string]struct{})
	seenURL := make(map[string]struct{})

	for _, cat := range usable {
		if v := r.trimBreadcrumb(cat.Breadcrumb); v != "" {
			if _, dup := seenCat[v]; !dup {
				seenCat[v] = struct{}{}
				result.Cats = append(result.Cats, v)
			}
		}
		for _, u := range r.categoryURLs(cat, index) {
			if _, dup := seenURL[u]; !dup {
				seenURL[u] = struct{}{}
				result.CatURLs = append(result.CatURLs, u)
			}
		}
	}

	return result, nil
}

// usable drops inactive categories, categories whose materialized path does
// not contain the navigation root, and duplicates. A category outside the
// root is not an error; it simply does not belong to the export scope.
func (r *CategoryResolver) usable(categories []models.Category) []models.Category {
	seen := make(map[string]struct{}, len(categories))
	out := make([]models.Category, 0, len(categories))
	for _, cat := range categories {
		if !cat.Active {
			continue
		}
		if _, dup := seen[cat.ID]; dup {
			continue
		}
		if !containsID(cat.Path, r.ctx.NavigationRoot.ID) {
			continue
		}
		seen[cat.ID] = struct{}{}
		out = append(out, cat)
	}
	return out
}

// trimBreadcrumb removes the prefix shared with the root's breadcrumb and
// joins the trimmed remainder with underscores. Blank segments contribute
// nothing; a fully blank remainder yields an empty string.
func (r *CategoryResolver) trimBreadcrumb(breadcrumb []string) string {
	root := r.ctx.NavigationRoot.Breadcrumb
	shared := 0
	for shared < len(root) && shared < len(breadcrumb) && root[shared] == breadcrumb[shared] {
		shared++
	}

	segments := make([]string, 0, len(breadcrumb)-shared)
	for _, s := range breadcrumb[shared:] {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, "_")
}

// categoryURLs collects the SEO paths of the category and its ancestors up to
// (excluding) the navigation root, plus the synthetic /navigation/{id}
// fallback for the category itself. Every path is prefixed with the domain
// path segment of the run, when one is configured.
func (r *CategoryResolver) categoryURLs(cat models.Category, index map[string]models.Category) []string {
	var urls []string

	chain := []models.Category{cat}
	for _, ancestorID := range ancestorIDs(cat, r.ctx.NavigationRoot.ID) {
		if ancestor, ok := index[ancestorID]; ok {
			chain = append(chain, ancestor)
		}
	}

	for _, entry := range chain {
		for _, seo := range entry.SeoPaths {
			if seo.SalesChannelID != "" && seo.SalesChannelID != r.ctx.SalesChannelID {
				continue
			}
			urls = append(urls, r.prefixed(EncodePath("/"+strings.Trim(seo.Path, "/"))))
		}
	}

	urls = append(urls, r.prefixed(fmt.Sprintf("/navigation/%s", cat.ID)))
	return urls
}

func (r *CategoryResolver) prefixed(path string) string {
	if r.ctx.DomainPrefix == "" {
		return path
	}
	return "/" + strings.Trim(r.ctx.DomainPrefix, "/") + path
}

// ancestorIDs returns the ids between the navigation root (exclusive) and the
// category itself (exclusive), nearest ancestor first.
func ancestorIDs(cat models.Category, rootID string) []string {
	var ids []string
	for i := len(cat.Path) - 2; i >= 0; i-- {
		if cat.Path[i] == rootID {
			break
		}
		ids = append(ids, cat.Path[i])
	}
	return ids
}

func containsID(path []string, id string) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}
