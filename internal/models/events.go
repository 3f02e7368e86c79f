package models

import "time"

// Event types
const (
	EventTypeExportStarted   = "EXPORT_STARTED"
	EventTypeExportCompleted = "EXPORT_COMPLETED"
	EventTypeExportFailed    = "EXPORT_FAILED"
	EventTypeWarmupRequested = "WARMUP_REQUESTED"
	EventTypeWarmupCompleted = "WARMUP_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportStartedEvent published when an export run begins
type ExportStartedEvent struct {
	BaseEvent
	RunID   string `json:"run_id"`
	ShopKey string `json:"shop_key"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

// ExportCompletedEvent published when an export run finishes
type ExportCompletedEvent struct {
	BaseEvent
	RunID          string `json:"run_id"`
	ShopKey        string `json:"shop_key"`
	TotalProducts  int    `json:"total_products"`
	Exported       int    `json:"exported"`
	Skipped        int    `json:"skipped"`
	ProductErrors  int    `json:"product_errors"`
	GeneralErrors  int    `json:"general_errors"`
	DurationMillis int64  `json:"duration_ms"`
}

// ExportFailedEvent published when an export run aborts entirely
type ExportFailedEvent struct {
	BaseEvent
	RunID   string `json:"run_id"`
	ShopKey string `json:"shop_key"`
	Reason  string `json:"reason"`
}

// WarmupRequestedEvent triggers a dynamic-group warm-up sweep
type WarmupRequestedEvent struct {
	BaseEvent
	ShopKey string `json:"shop_key"`
}

// WarmupCompletedEvent published when a warm-up sweep finishes its last page
type WarmupCompletedEvent struct {
	BaseEvent
	ShopKey        string `json:"shop_key"`
	StreamsTotal   int    `json:"streams_total"`
	PagesProcessed int    `json:"pages_processed"`
	DurationMillis int64  `json:"duration_ms"`
}
