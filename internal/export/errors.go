package export

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mandatory facet errors. Each one aborts only the product it was raised for;
// the surrounding page keeps processing.
var (
	ErrNoName       = errors.New("product has no name set")
	ErrNoPrices     = errors.New("product has no prices")
	ErrNoCategories = errors.New("product is not assigned to any usable category")
)

// ErrCrossSellExcluded marks a product skipped because one of its categories
// is configured as a cross-selling category. This is a deliberate exclusion,
// not a defect.
var ErrCrossSellExcluded = errors.New("product is excluded by a cross-selling category")

// ErrZeroPrice marks a product skipped because its price is zero and the run
// does not export zero-priced products.
var ErrZeroPrice = errors.New("product has a zero price and zero-priced export is disabled")

// ErrOutOfStock marks a product skipped because it is not available and the
// run hides out-of-stock products.
var ErrOutOfStock = errors.New("product is out of stock and out-of-stock export is disabled")

// ProductError wraps a mandatory-facet or exclusion error with the product it
// belongs to, so the aggregator can key it without parsing messages.
type ProductError struct {
	ProductID string
	Err       error
}

func (e *ProductError) Error() string {
	return fmt.Sprintf("product %s: %v", e.ProductID, e.Err)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

// Aggregator collects per-product and general failures during a run. It is
// safe for concurrent use; entries are append-only.
type Aggregator struct {
	mu       sync.Mutex
	general  []string
	products map[string][]string
	order    []string
}

// NewAggregator creates an empty error aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{products: make(map[string][]string)}
}

// AddGeneral records a run-scoped error not tied to any product.
func (a *Aggregator) AddGeneral(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.general = append(a.general, msg)
}

// AddProduct records one failure reason for the given product.
func (a *Aggregator) AddProduct(productID, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, seen := a.products[productID]; !seen {
		a.order = append(a.order, productID)
	}
	a.products[productID] = append(a.products[productID], msg)
}

// AddProductError records a ProductError under its product id.
func (a *Aggregator) AddProductError(err *ProductError) {
	a.AddProduct(err.ProductID, err.Err.Error())
}

// HasErrors reports whether any product or general error was recorded.
func (a *Aggregator) HasErrors() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.general) > 0 || len(a.products) > 0
}

// ProductErrorCount returns the number of products that failed.
func (a *Aggregator) ProductErrorCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.products)
}

// GeneralErrorCount returns the number of general errors.
func (a *Aggregator) GeneralErrorCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.general)
}

// ProductReport is the per-product slice of a diagnostic report.
type ProductReport struct {
	ID     string   `json:"id"`
	Errors []string `json:"errors"`
}

// Report is the diagnostic JSON structure returned instead of feed bytes
// whenever the aggregator holds any entries.
type Report struct {
	General  []string        `json:"general"`
	Products []ProductReport `json:"products"`
}

// Report builds the diagnostic report. Products appear in first-error order;
// parallel runs merge worker buffers beforehand, so the order is stable for a
// given input page.
func (a *Aggregator) Report() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := &Report{General: append([]string(nil), a.general...)}
	for _, id := range a.order {
		r.Products = append(r.Products, ProductReport{
			ID:     id,
			Errors: append([]string(nil), a.products[id]...),
		})
	}
	if r.General == nil {
		r.General = []string{}
	}
	return r
}

// SortProducts orders the report's product entries by id. Used by diagnostics
// endpoints that want a canonical ordering regardless of worker scheduling.
func (r *Report) SortProducts() {
	sort.Slice(r.Products, func(i, j int) bool { return r.Products[i].ID < r.Products[j].ID })
}
