package middleware

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

// ContextTokenKey is the gin context key storing the Canvas bearer token.
const ContextTokenKey = "canvasToken"

// RequireToken protects Canvas-backed routes. The Authorization header wins
// and is remembered through the store, so background refreshes keep a token
// to work with between dashboard visits. Requests without a header fall back
// to the remembered token; when neither exists the request is rejected.
func RequireToken(st store.Store, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	var mu sync.Mutex
	var lastSeen string
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			mu.Lock()
			changed := token != lastSeen
			lastSeen = token
			mu.Unlock()
			if changed {
				if err := st.Set(c.Request.Context(), store.KeyToken, token); err != nil {
					logger.Warn("failed to remember canvas token", zap.Error(err))
				}
			}
			c.Set(ContextTokenKey, token)
			c.Next()
			return
		}

		var stored string
		if err := st.Get(c.Request.Context(), store.KeyToken, &stored); err != nil {
			if !errors.Is(err, appErrors.ErrCacheMiss) {
				logger.Warn("failed to read stored canvas token", zap.Error(err))
			}
		}
		if stored == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidToken, "provide a Canvas access token via the Authorization header"))
			c.Abort()
			return
		}
		c.Set(ContextTokenKey, stored)
		c.Next()
	}
}

// TokenFromContext returns the Canvas token attached by RequireToken.
func TokenFromContext(c *gin.Context) string {
	if value, exists := c.Get(ContextTokenKey); exists {
		if token, ok := value.(string); ok {
			return token
		}
	}
	return ""
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
