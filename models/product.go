package models

import "time"

// Localisation pins a stock location to a city and its coordinates.
type Localisation struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StockLocation is one warehouse holding a quantity of a product.
type StockLocation struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Quantity     int          `json:"quantity"`
	Localisation Localisation `json:"localisation"`
}

// EditEntry records which warehouseman touched a product and when.
type EditEntry struct {
	WarehousemanID string    `json:"warehousemanId"`
	At             time.Time `json:"at"`
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Barcode     string          `json:"barcode"`
	Price       float64         `json:"price"`
	Solde       *float64        `json:"solde,omitempty"`
	Supplier    string          `json:"supplier"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Stocks      []StockLocation `json:"stocks"`
	EditedBy    []EditEntry     `json:"editedBy"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateProductRequest is the creation form payload. Price and Solde are
// pointers so an absent field is distinguishable from zero.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Barcode     string          `json:"barcode"`
	Price       *float64        `json:"price"`
	Solde       *float64        `json:"solde"`
	Supplier    string          `json:"supplier"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Stocks      []StockLocation `json:"stocks"`
}

type UpdateProductRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Price       *float64 `json:"price"`
	Solde       *float64 `json:"solde"`
	Supplier    string   `json:"supplier"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
}

type UpdateStockRequest struct {
	Quantity *int `json:"quantity"`
}
