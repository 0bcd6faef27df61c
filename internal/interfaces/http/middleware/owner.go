package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/infrastructure/logger"
)

const (
	// OwnerIDHeader is the development fallback header carrying the owner ID
	OwnerIDHeader = "X-Owner-ID"
	// OwnerIDKey is the gin context key where the resolved owner ID is stored
	OwnerIDKey = "owner_id"
)

// OwnerConfig holds configuration for the owner scoping middleware
type OwnerConfig struct {
	// Required determines whether requests without an owner identity are rejected
	Required bool
	// AllowHeaderFallback enables the X-Owner-ID header when no JWT claim is
	// present. Keep this off in production; it exists for local development
	// and integration tests.
	AllowHeaderFallback bool
	// SkipPaths are paths that don't require owner scoping
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOwnerConfig returns the default owner middleware configuration
func DefaultOwnerConfig() OwnerConfig {
	return OwnerConfig{
		Required:            true,
		AllowHeaderFallback: false,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
		},
		Logger: nil,
	}
}

// Owner returns owner scoping middleware with default configuration
func Owner() gin.HandlerFunc {
	return OwnerWithConfig(DefaultOwnerConfig())
}

// OwnerWithConfig returns owner scoping middleware with custom configuration.
// The owner ID is resolved from the authenticated JWT claims first and, when
// enabled, from the X-Owner-ID header. Every request that passes carries a
// validated owner UUID in both the gin context and the request context.
func OwnerWithConfig(cfg OwnerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		ownerID := extractOwnerID(c, cfg)

		if ownerID == "" {
			if cfg.Required {
				respondMissingOwner(c, cfg, "Owner identification required")
				return
			}
			c.Next()
			return
		}

		// Owner IDs are UUIDs everywhere in the system
		if _, err := uuid.Parse(ownerID); err != nil {
			respondMissingOwner(c, cfg, "Invalid owner ID format")
			return
		}

		c.Set(OwnerIDKey, ownerID)

		// Propagate into the request context so repository and service
		// logging picks up the owner field
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithOwnerID(ctx, log, ownerID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractOwnerID resolves the owner ID, JWT claims first then the
// development header fallback
func extractOwnerID(c *gin.Context, cfg OwnerConfig) string {
	if ownerID := GetJWTOwnerID(c); ownerID != "" {
		return ownerID
	}

	if cfg.AllowHeaderFallback {
		if ownerID := c.GetHeader(OwnerIDHeader); ownerID != "" {
			return ownerID
		}
	}

	return ""
}

// respondMissingOwner rejects the request with a 401
func respondMissingOwner(c *gin.Context, cfg OwnerConfig, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Owner resolution failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("message", message),
		)
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetOwnerID retrieves the owner ID from gin.Context
// Returns empty string if not found
func GetOwnerID(c *gin.Context) string {
	if ownerID, exists := c.Get(OwnerIDKey); exists {
		if id, ok := ownerID.(string); ok {
			return id
		}
	}
	return ""
}

// GetOwnerUUID retrieves the owner ID from gin.Context as a UUID
func GetOwnerUUID(c *gin.Context) (uuid.UUID, error) {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return uuid.Nil, ErrOwnerNotFound
	}
	return uuid.Parse(ownerID)
}

// MustGetOwnerID retrieves the owner ID from gin.Context or panics.
// Only use behind OwnerWithConfig with Required set.
func MustGetOwnerID(c *gin.Context) string {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		panic("owner ID not found in context")
	}
	return ownerID
}

// ErrOwnerNotFound is returned when no owner ID is present in the context
var ErrOwnerNotFound = &OwnerError{Message: "owner ID not found in context"}

// OwnerError represents an owner resolution error
type OwnerError struct {
	Message string
}

func (e *OwnerError) Error() string {
	return e.Message
}
