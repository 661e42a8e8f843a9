package models

import "time"

const (
	EventStockUpdated   = "stock_updated"
	EventProductCreated = "product_created"
)

// StockEvent is published to Kafka after a successful stock mutation.
type StockEvent struct {
	EventType      string    `json:"event_type"`
	ProductID      int       `json:"product_id"`
	Barcode        string    `json:"barcode"`
	LocationID     int       `json:"location_id,omitempty"`
	LocationName   string    `json:"location_name,omitempty"`
	Quantity       int       `json:"quantity"`
	TotalStock     int       `json:"total_stock"`
	WarehousemanID string    `json:"warehouseman_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
