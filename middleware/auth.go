package middleware

import (
	"net/http"
	"strings"
	"time"

	"inventory-svc/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret = []byte(getEnv("JWT_SECRET", "your-secret-key-change-in-production"))

const sessionKey = "session"

// GenerateToken signs a 24h session token for a warehouseman.
func GenerateToken(w models.Warehouseman) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"warehouseman_id": w.ID,
		"name":            w.Name,
		"admin":           w.Admin,
		"exp":             time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// AuthMiddleware validates the Bearer token and stores the warehouseman
// session on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		session := models.Session{}
		if id, ok := claims["warehouseman_id"].(string); ok {
			session.WarehousemanID = id
		}
		if name, ok := claims["name"].(string); ok {
			session.Name = name
		}
		if admin, ok := claims["admin"].(bool); ok {
			session.Admin = admin
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// GetSession returns the authenticated session set by AuthMiddleware.
func GetSession(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := value.(models.Session)
	return session, ok
}
