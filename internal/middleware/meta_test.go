package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResponseMetaLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var meta map[string]interface{}
	router := gin.New()
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		SetMeta(c, "window", "2026-03")
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if meta == nil {
		t.Fatal("expected metadata to be initialised")
	}
	if hit, ok := meta["cache_hit"].(bool); !ok || !hit {
		t.Fatalf("unexpected cache_hit: %v", meta["cache_hit"])
	}
	if meta["window"] != "2026-03" {
		t.Fatalf("unexpected window: %v", meta["window"])
	}
	if _, stamped := meta["processing_time_ms"]; !stamped {
		t.Fatal("expected a processing time stamp on extraction")
	}
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if ExtractMeta(c) != nil {
		t.Fatal("expected nil metadata when the middleware is absent")
	}
}
