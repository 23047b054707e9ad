package model

import (
	"encoding/json"
	"time"
)

// WebhookDelivery is one inbound GitHub delivery as received by the ingest server.
type WebhookDelivery struct {
	ID              int64           `json:"id"`
	DeliveryID      string          `json:"delivery_id"`
	Event           string          `json:"event"`
	Action          string          `json:"action"`
	InstallationID  *int64          `json:"installation_id,omitempty"`
	Payload         json.RawMessage `json:"payload"`
	Attempts        int             `json:"attempts"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	ProcessingError *string         `json:"processing_error,omitempty"`
	EnqueuedAt      *time.Time      `json:"enqueued_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (d *WebhookDelivery) IsProcessed() bool {
	return d.ProcessedAt != nil
}

// IsEnqueued reports whether a task for the delivery ever reached the queue.
func (d *WebhookDelivery) IsEnqueued() bool {
	return d.EnqueuedAt != nil
}
