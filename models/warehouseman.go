package models

import "time"

type Warehouseman struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SecretKeyHash string    `json:"-"`
	Admin         bool      `json:"admin"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	SecretKey string `json:"secretKey" binding:"required"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	Warehouseman Warehouseman `json:"warehouseman"`
}

// Session is the authenticated warehouseman identity extracted from the
// JWT, passed explicitly into catalog scoping.
type Session struct {
	WarehousemanID string
	Name           string
	Admin          bool
}
