package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_meta_start"
)

// WithResponseMeta seeds a metadata map on the request context so handlers
// can attach envelope meta fields. Processing time is stamped when the map is
// extracted for rendering, covering the work up to that point.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Set(responseStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the response was answered from the store cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// SetMeta attaches one metadata field to the current response envelope.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the metadata map for the request, stamping the elapsed
// processing time on first extraction. Returns nil when the middleware is not
// installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	if _, stamped := meta["processing_time_ms"]; !stamped {
		if started, found := c.Get(responseStartKey); found {
			if start, ok := started.(time.Time); ok {
				meta["processing_time_ms"] = time.Since(start).Milliseconds()
			}
		}
	}
	return meta
}

// ensureMeta looks the map up without stamping so writes mid-handler never
// freeze the processing time early.
func ensureMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if value, exists := c.Get(responseMetaKey); exists {
		if meta, ok := value.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
