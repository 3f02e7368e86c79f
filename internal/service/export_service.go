package service

import (
	"context"
	"fmt"
	"time"

	"feed-export-service/internal/broker"
	"feed-export-service/internal/dyngroup"
	"feed-export-service/internal/export"
	"feed-export-service/internal/models"
	"feed-export-service/internal/searcher"
	"feed-export-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportService runs one export request end to end: fetch a page of
// products, push it through the transformation pipeline and either serialize
// the feed or build a diagnostic report.
type ExportService struct {
	searcher  searcher.ProductSearcher
	cache     *dyngroup.Cache
	writer    export.FeedWriter
	publisher *broker.EventPublisher
	exportCtx *export.Context
	pipeline  *export.Pipeline
	logger    *zap.Logger
}

// NewExportService wires the export pipeline. The event publisher may be nil
// when no broker is configured.
func NewExportService(
	productSearcher searcher.ProductSearcher,
	cache *dyngroup.Cache,
	writer export.FeedWriter,
	publisher *broker.EventPublisher,
	exportCtx *export.Context,
	workers int,
) *ExportService {
	adapter := export.NewItemAdapter(exportCtx, cache)
	return &ExportService{
		searcher:  productSearcher,
		cache:     cache,
		writer:    writer,
		publisher: publisher,
		exportCtx: exportCtx,
		pipeline:  export.NewPipeline(adapter, workers),
		logger:    util.GetLogger(),
	}
}

// ExportRequest describes one page request.
type ExportRequest struct {
	Limit     int
	Offset    int
	ProductID string
	Strict    bool
}

// ExportResult is either serialized feed bytes or a diagnostic report, never
// both.
type ExportResult struct {
	Feed     []byte
	Report   *export.Report
	Exported int
	Total    int
}

// ContentType returns the MIME type the configured feed writer produces.
func (s *ExportService) ContentType() string {
	return s.writer.ContentType()
}

// IsWarm reports whether the dynamic group cache finished a warm-up sweep
// recently enough to serve a category-accurate export. Cache backend errors
// degrade to "not warm" so the caller can answer with a precondition failure
// instead of an incomplete category set.
func (s *ExportService) IsWarm(ctx context.Context) bool {
	warm, err := s.cache.IsWarm(ctx)
	if err != nil {
		util.CacheErrorsTotal.Inc()
		s.logger.Warn("Failed to read warm-up state", zap.Error(err))
		return false
	}
	return warm
}

// ClearGeneralCache resets the stream total and the warmed flag, forcing the
// next warm-up sweep to recompute the total. Per-stream entries are kept.
func (s *ExportService) ClearGeneralCache(ctx context.Context) error {
	return s.cache.ClearGeneralCache(ctx)
}

// Export processes one page. In standard mode failed products are simply
// omitted and the rest is serialized; a diagnostic report replaces the feed
// only for run-scoped errors. Strict mode returns the report whenever any
// error was recorded.
func (s *ExportService) Export(ctx context.Context, req *ExportRequest) (*ExportResult, error) {
	ctx, span := util.StartSpan(ctx, "ExportService.Export")
	defer span.End()

	runID := uuid.New().String()
	start := time.Now()
	s.publishStarted(ctx, runID, req)

	page, err := s.searcher.FetchProducts(ctx, req.Limit, req.Offset, req.ProductID)
	if err != nil {
		util.ExportRunsTotal.WithLabelValues("error").Inc()
		s.publishFailed(ctx, runID, err)
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	agg := export.NewAggregator()
	if req.ProductID != "" && len(page.Products) == 0 {
		agg.AddGeneral(fmt.Sprintf("No product found for id %s", req.ProductID))
	}

	records := s.pipeline.ProcessPage(ctx, page.Products, page.Categories, agg)

	result := &ExportResult{Exported: len(records), Total: page.Total}

	diagnostic := agg.GeneralErrorCount() > 0 || (req.Strict && agg.HasErrors())
	if diagnostic {
		result.Report = agg.Report()
		util.ExportRunsTotal.WithLabelValues("diagnostic").Inc()
	} else {
		feed, err := s.writer.Serialize(records, req.Offset, len(records), page.Total)
		if err != nil {
			util.ExportRunsTotal.WithLabelValues("error").Inc()
			s.publishFailed(ctx, runID, err)
			return nil, fmt.Errorf("failed to serialize feed: %w", err)
		}
		result.Feed = feed
		util.ExportRunsTotal.WithLabelValues("ok").Inc()
	}

	s.publishCompleted(ctx, runID, page, result, agg, time.Since(start))
	s.logger.Info("Export page processed",
		zap.String("run_id", runID),
		zap.Int("offset", req.Offset),
		zap.Int("exported", result.Exported),
		zap.Int("product_errors", agg.ProductErrorCount()),
		zap.Int("general_errors", agg.GeneralErrorCount()))
	return result, nil
}

func (s *ExportService) publishStarted(ctx context.Context, runID string, req *ExportRequest) {
	if s.publisher == nil {
		return
	}
	event := &models.ExportStartedEvent{
		BaseEvent: newBaseEvent(models.EventTypeExportStarted),
		RunID:     runID,
		ShopKey:   s.exportCtx.ShopKey,
		Offset:    req.Offset,
		Limit:     req.Limit,
	}
	if err := s.publisher.PublishExportStarted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ExportStarted event", zap.Error(err))
	}
}

func (s *ExportService) publishCompleted(ctx context.Context, runID string, page *searcher.ProductPage, result *ExportResult, agg *export.Aggregator, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}
	event := &models.ExportCompletedEvent{
		BaseEvent:      newBaseEvent(models.EventTypeExportCompleted),
		RunID:          runID,
		ShopKey:        s.exportCtx.ShopKey,
		TotalProducts:  page.Total,
		Exported:       result.Exported,
		Skipped:        len(page.Products) - result.Exported,
		ProductErrors:  agg.ProductErrorCount(),
		GeneralErrors:  agg.GeneralErrorCount(),
		DurationMillis: elapsed.Milliseconds(),
	}
	if err := s.publisher.PublishExportCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ExportCompleted event", zap.Error(err))
	}
}

func (s *ExportService) publishFailed(ctx context.Context, runID string, cause error) {
	if s.publisher == nil {
		return
	}
	event := &models.ExportFailedEvent{
		BaseEvent: newBaseEvent(models.EventTypeExportFailed),
		RunID:     runID,
		ShopKey:   s.exportCtx.ShopKey,
		Reason:    cause.Error(),
	}
	if err := s.publisher.PublishExportFailed(ctx, event); err != nil {
		s.logger.Error("Failed to publish ExportFailed event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
