package dyngroup

import (
	"context"
	"fmt"
	"time"

	"feed-export-service/internal/models"
	"feed-export-service/internal/util"

	"go.uber.org/zap"
)

// StreamSource supplies saved product streams page by page, with the
// categories each stream resolves to already evaluated.
type StreamSource interface {
	CountStreams(ctx context.Context) (int, error)
	FetchStreams(ctx context.Context, limit, offset int) ([]models.ProductStream, error)
}

// Warmer runs the warm-up sweep that fills the dynamic group cache. A sweep
// must complete before a category-accurate export can be served.
type Warmer struct {
	cache    *Cache
	source   StreamSource
	pageSize int
	logger   *zap.Logger
}

// SweepResult summarizes one completed warm-up sweep.
type SweepResult struct {
	StreamsTotal   int
	PagesProcessed int
	Duration       time.Duration
}

// NewWarmer creates a warmer. The page size bounds how many streams one page
// evaluates.
func NewWarmer(cache *Cache, source StreamSource, pageSize int) *Warmer {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Warmer{
		cache:    cache,
		source:   source,
		pageSize: pageSize,
		logger:   util.GetLogger(),
	}
}

// ProcessPage evaluates one page of the sweep. The stream total is computed
// on the first page, or whenever it is missing from the cache; later pages
// reuse the cached value so a slow-changing total is not recomputed per page.
// Reaching the last page sets the warmed flag. Returns whether the sweep is
// done after this page.
func (w *Warmer) ProcessPage(ctx context.Context, page int) (bool, error) {
	total, cached, err := w.cache.Total(ctx)
	if err != nil {
		return false, err
	}
	if !cached || page == 0 {
		total, err = w.source.CountStreams(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to count product streams: %w", err)
		}
		if err := w.cache.SetTotal(ctx, total); err != nil {
			return false, err
		}
	}

	if total == 0 {
		if err := w.cache.MarkWarmedUp(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	offset := page * w.pageSize
	streams, err := w.source.FetchStreams(ctx, w.pageSize, offset)
	if err != nil {
		return false, fmt.Errorf("failed to fetch product streams: %w", err)
	}

	for _, stream := range streams {
		if len(stream.CategoryIDs) == 0 {
			continue
		}
		if err := w.cache.AppendStreamCategories(ctx, stream.ID, stream.CategoryIDs); err != nil {
			return false, err
		}
	}

	done := offset+w.pageSize >= total
	if done {
		if err := w.cache.MarkWarmedUp(ctx); err != nil {
			return false, err
		}
	}
	return done, nil
}

// RunSweep drives ProcessPage from the first page until the sweep completes.
func (w *Warmer) RunSweep(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	pages := 0

	for page := 0; ; page++ {
		done, err := w.ProcessPage(ctx, page)
		if err != nil {
			return nil, err
		}
		pages++
		if done {
			break
		}
	}

	total, _, err := w.cache.Total(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		StreamsTotal:   total,
		PagesProcessed: pages,
		Duration:       time.Since(start),
	}
	w.logger.Info("Dynamic group warm-up completed",
		zap.Int("streams_total", result.StreamsTotal),
		zap.Int("pages", result.PagesProcessed),
		zap.Duration("duration", result.Duration))
	return result, nil
}
