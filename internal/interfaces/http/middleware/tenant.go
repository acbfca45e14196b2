package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/menubridge/backend/internal/infrastructure/logger"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for the tenant resolution middleware
type TenantConfig struct {
	// DefaultTenantID is used when the request carries no tenant header.
	// Webhook deliveries and single-tenant deployments rely on this.
	DefaultTenantID uuid.UUID
}

// Tenant resolves the tenant from the X-Tenant-ID header, falling back to the
// configured default. The resolved ID is stored in the gin context and the
// request-scoped logger.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := cfg.DefaultTenantID

		if header := c.GetHeader(TenantHeaderKey); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_INVALID_INPUT",
						"message": "invalid X-Tenant-ID header",
					},
				})
				return
			}
			tenantID = parsed
		}

		if tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_INVALID_INPUT",
					"message": "tenant could not be resolved",
				},
			})
			return
		}

		c.Set(TenantIDKey, tenantID.String())
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenantID extracts the resolved tenant ID from the gin context
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value := c.GetString(TenantIDKey)
	if value == "" {
		return uuid.Nil, false
	}
	tenantID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return tenantID, true
}
