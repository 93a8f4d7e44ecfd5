package storageevent

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/conferly/backend/config"
	"github.com/conferly/backend/pkg/response"
)

const (
	// MachineUserName is the non-interactive identity storage events run as.
	MachineUserName = "storage_event_user"
	// ContextPrincipal is the gin context key for the authenticated principal.
	ContextPrincipal = "storage_event_principal"
)

// BearerAuth authenticates inbound storage-event calls with a shared bearer
// token. Token comparison is constant-time; all rejection messages are
// deliberately generic.
func BearerAuth(cfg config.RecordingConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !cfg.EnableStorageAuth {
			c.Set(ContextPrincipal, MachineUserName)
			c.Next()
			return
		}

		if cfg.StorageEventToken == "" {
			logger.Error("storage event auth is enabled but no token is configured")
			response.Unauthorized(c, "authentication is enabled but token is not configured")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			logger.Warn("storage event auth failed: missing authorization header",
				zap.String("client_ip", c.ClientIP()))
			response.Unauthorized(c, "authorization header is required")
			c.Abort()
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Warn("storage event auth failed: invalid authorization header",
				zap.String("client_ip", c.ClientIP()))
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.StorageEventToken)) != 1 {
			logger.Warn("storage event auth failed: invalid token",
				zap.String("client_ip", c.ClientIP()))
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, MachineUserName)
		c.Next()
	}
}
