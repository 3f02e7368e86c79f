package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"feed-export-service/internal/models"
	"feed-export-service/internal/util"

	"go.uber.org/zap"
)

// Pipeline processes one page of products at a time. Products within a page
// have no data dependency on each other, so the per-product resolver chain
// fans out over a bounded worker set; results and errors are merged back in
// input order for reproducible diagnostics.
type Pipeline struct {
	adapter *ItemAdapter
	workers int
	logger  *zap.Logger
}

// NewPipeline creates a pipeline around the given adapter. A worker count
// below one falls back to sequential processing.
func NewPipeline(adapter *ItemAdapter, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		adapter: adapter,
		workers: workers,
		logger:  util.GetLogger(),
	}
}

// ProcessPage adapts every product of a page. Failed products are recorded in
// the aggregator and excluded from the returned records; the page never
// aborts because of a single product.
func (p *Pipeline) ProcessPage(ctx context.Context, products []*models.Product, index map[string]models.Category, agg *Aggregator) []models.ExportRecord {
	ctx, span := util.StartSpan(ctx, "Pipeline.ProcessPage")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ExportPageLatency.Observe(time.Since(start).Seconds())
	}()

	results := make([]*models.ExportRecord, len(products))
	failures := make([]*ProductError, len(products))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				record, err := p.adapter.Adapt(ctx, products[i], index)
				if err != nil {
					failures[i] = asProductError(err, products[i].ID)
					continue
				}
				results[i] = record
			}
		}()
	}
	for i := range products {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Merge in input order so the diagnostic report is stable for a given
	// page regardless of worker scheduling.
	records := make([]models.ExportRecord, 0, len(products))
	for i := range products {
		if failures[i] != nil {
			p.recordFailure(failures[i])
			continue
		}
		if results[i] != nil {
			records = append(records, *results[i])
			util.ProductsExportedTotal.Inc()
		}
	}
	if agg != nil {
		for i := range products {
			if failures[i] != nil {
				agg.AddProductError(failures[i])
			}
		}
	}
	return records
}

func (p *Pipeline) recordFailure(failure *ProductError) {
	if errors.Is(failure, ErrCrossSellExcluded) || errors.Is(failure, ErrOutOfStock) {
		util.ProductsExcludedTotal.Inc()
	} else {
		util.ProductsFailedTotal.WithLabelValues(failureReason(failure)).Inc()
	}
	p.logger.Debug("Product skipped",
		zap.String("product_id", failure.ProductID),
		zap.String("reason", failure.Err.Error()))
}

// asProductError keeps adapter failures keyed by product id even when an
// unexpected plain error escapes a resolver.
func asProductError(err error, productID string) *ProductError {
	var perr *ProductError
	if errors.As(err, &perr) {
		return perr
	}
	return &ProductError{ProductID: productID, Err: err}
}

func failureReason(failure *ProductError) string {
	switch {
	case errors.Is(failure, ErrNoName):
		return "no_name"
	case errors.Is(failure, ErrNoPrices):
		return "no_prices"
	case errors.Is(failure, ErrNoCategories):
		return "no_categories"
	case errors.Is(failure, ErrZeroPrice):
		return "zero_price"
	default:
		return "other"
	}
}
