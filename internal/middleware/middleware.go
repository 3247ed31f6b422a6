package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/bashbay-calendar/internal/helpers"
)

// UserKey is the context key holding *helpers.EnhancedClaims for
// authenticated requests.
const UserKey = "user"

// TokenValidator is satisfied by *helpers.TokenValidator.
type TokenValidator interface {
	ValidateToken(token string) (*helpers.CustomClaims, error)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := CurrentUser(c); ok {
			attrs = append(attrs, "user_id", claims.UserID, "role", claims.GetSafeRole())
		}

		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		// handlers that already wrote a response keep it
		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "Internal server error",
			"request_id": requestID,
		})
	}
}

// AuthMiddleware resolves the signed-in user from the access_token cookie
// or a Bearer header. Token refresh is the auth service's job, not ours.
func AuthMiddleware(validator TokenValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("Unauthorized access"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.ErrorResponse("Unauthorized access"))
			return
		}

		c.Set(UserKey, helpers.NewEnhancedClaims(claims))
		c.Next()
	}
}

// CurrentUser returns the claims set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.EnhancedClaims)
	return claims, ok && claims != nil
}

func bearerToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
