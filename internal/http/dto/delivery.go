package dto

type DeliveryStatus string

const (
	DeliveryStatusQueued    DeliveryStatus = "queued"
	DeliveryStatusDuplicate DeliveryStatus = "duplicate"
	DeliveryStatusIgnored   DeliveryStatus = "ignored"
	DeliveryStatusPong      DeliveryStatus = "pong"
)

type IngestDeliveryResponse struct {
	Status        DeliveryStatus `json:"status"`
	DeliveryID    string         `json:"delivery_id,omitempty"`
	DeliveryRowID int64          `json:"delivery_row_id,omitempty,string"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
