package handlers

import (
	"database/sql"
	"net/http"

	"inventory-svc/middleware"
	"inventory-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAuthHandler(db *sql.DB, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:     db,
		logger: logger,
	}
}

// Login exchanges a warehouseman secret key for a session token. Secret
// keys are stored hashed, so candidates are compared against every row;
// the warehouseman table is small.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.db.Query("SELECT id, name, secret_key_hash, is_admin, created_at FROM warehousemans")
	if err != nil {
		traceID := middleware.GetTraceID(c.Request.Context())
		h.logger.Error("Database error", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	var matched *models.Warehouseman
	for rows.Next() {
		var w models.Warehouseman
		if err := rows.Scan(&w.ID, &w.Name, &w.SecretKeyHash, &w.Admin, &w.CreatedAt); err != nil {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(w.SecretKeyHash), []byte(req.SecretKey)) == nil {
			matched = &w
			break
		}
	}

	if matched == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid secret key"})
		return
	}

	token, err := middleware.GenerateToken(*matched)
	if err != nil {
		traceID := middleware.GetTraceID(c.Request.Context())
		h.logger.Error("Failed to generate token", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	traceID := middleware.GetTraceID(c.Request.Context())
	h.logger.Info("Warehouseman logged in", zap.String("trace_id", traceID), zap.String("warehouseman_id", matched.ID))
	c.JSON(http.StatusOK, models.LoginResponse{
		Token:        token,
		Warehouseman: *matched,
	})
}
