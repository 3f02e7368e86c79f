package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"feed-export-service/internal/models"
	"feed-export-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing export domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishExportStarted publishes ExportStarted event
func (ep *EventPublisher) PublishExportStarted(ctx context.Context, event *models.ExportStartedEvent) error {
	key := fmt.Sprintf("export-%s", event.RunID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishExportCompleted publishes ExportCompleted event
func (ep *EventPublisher) PublishExportCompleted(ctx context.Context, event *models.ExportCompletedEvent) error {
	key := fmt.Sprintf("export-%s", event.RunID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishExportFailed publishes ExportFailed event
func (ep *EventPublisher) PublishExportFailed(ctx context.Context, event *models.ExportFailedEvent) error {
	key := fmt.Sprintf("export-%s", event.RunID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishWarmupRequested publishes WarmupRequested event
func (ep *EventPublisher) PublishWarmupRequested(ctx context.Context, event *models.WarmupRequestedEvent) error {
	key := fmt.Sprintf("warmup-%s", event.ShopKey)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishWarmupCompleted publishes WarmupCompleted event
func (ep *EventPublisher) PublishWarmupCompleted(ctx context.Context, event *models.WarmupCompletedEvent) error {
	key := fmt.Sprintf("warmup-%s", event.ShopKey)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onWarmupRequested func(context.Context, *models.WarmupRequestedEvent) error
	logger            *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnWarmupRequested registers a handler for WarmupRequested events
func (eh *EventHandler) OnWarmupRequested(handler func(context.Context, *models.WarmupRequestedEvent) error) {
	eh.onWarmupRequested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeWarmupRequested:
		if eh.onWarmupRequested != nil {
			var event models.WarmupRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal WarmupRequested event: %w", err)
			}
			return eh.onWarmupRequested(ctx, &event)
		}

	default:
		// Completed/started events published by this service come back on the
		// same topic; they need no handling.
	}

	return nil
}
