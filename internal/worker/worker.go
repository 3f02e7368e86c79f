package worker

import (
	"context"
	"time"

	"feed-export-service/internal/broker"
	"feed-export-service/internal/dyngroup"
	"feed-export-service/internal/models"
	"feed-export-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WarmupWorker runs dynamic-group warm-up sweeps. Sweeps are triggered
// directly through RunSweep or by WarmupRequested events from the broker;
// export reads and warm-up writes stay in distinct phases either way.
type WarmupWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	warmer       *dyngroup.Warmer
	publisher    *broker.EventPublisher
	shopKey      string
	logger       *zap.Logger
}

// NewWarmupWorker creates a new warm-up worker
func NewWarmupWorker(
	consumer *broker.Consumer,
	warmer *dyngroup.Warmer,
	publisher *broker.EventPublisher,
	shopKey string,
) *WarmupWorker {
	w := &WarmupWorker{
		consumer:  consumer,
		warmer:    warmer,
		publisher: publisher,
		shopKey:   shopKey,
		logger:    util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnWarmupRequested(w.handleWarmupRequested)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *WarmupWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting warm-up worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *WarmupWorker) Stop() error {
	w.logger.Info("Stopping warm-up worker")
	return w.consumer.Close()
}

// RunSweep executes one warm-up sweep and publishes the completion event.
func (w *WarmupWorker) RunSweep(ctx context.Context) (*dyngroup.SweepResult, error) {
	result, err := w.warmer.RunSweep(ctx)
	if err != nil {
		return nil, err
	}

	util.WarmupSweepsTotal.Inc()
	util.WarmupSweepLatency.Observe(result.Duration.Seconds())

	if w.publisher != nil {
		event := &models.WarmupCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeWarmupCompleted,
				Timestamp: time.Now(),
			},
			ShopKey:        w.shopKey,
			StreamsTotal:   result.StreamsTotal,
			PagesProcessed: result.PagesProcessed,
			DurationMillis: result.Duration.Milliseconds(),
		}
		if err := w.publisher.PublishWarmupCompleted(ctx, event); err != nil {
			w.logger.Error("Failed to publish WarmupCompleted event", zap.Error(err))
		}
	}
	return result, nil
}

// handleWarmupRequested reacts to broker-triggered sweeps. Requests for other
// shops are ignored.
func (w *WarmupWorker) handleWarmupRequested(ctx context.Context, event *models.WarmupRequestedEvent) error {
	if event.ShopKey != w.shopKey {
		return nil
	}
	_, err := w.RunSweep(ctx)
	return err
}
