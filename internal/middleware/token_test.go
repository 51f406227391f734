package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/store"
)

func TestRequireTokenHeaderWinsAndIsRemembered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore(0)

	var seen string
	router := gin.New()
	router.Use(RequireToken(st, nil))
	router.GET("/", func(c *gin.Context) {
		seen = TokenFromContext(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer canvas-token-1")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if seen != "canvas-token-1" {
		t.Fatalf("unexpected token: %s", seen)
	}

	var stored string
	if err := st.Get(context.Background(), store.KeyToken, &stored); err != nil {
		t.Fatalf("expected token to be remembered: %v", err)
	}
	if stored != "canvas-token-1" {
		t.Fatalf("unexpected stored token: %s", stored)
	}
}

func TestRequireTokenFallsBackToStoredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore(0)
	if err := st.Set(context.Background(), store.KeyToken, "remembered-token"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	var seen string
	router := gin.New()
	router.Use(RequireToken(st, nil))
	router.GET("/", func(c *gin.Context) {
		seen = TokenFromContext(c)
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if seen != "remembered-token" {
		t.Fatalf("unexpected token: %s", seen)
	}
}

func TestRequireTokenRejectsWhenNoTokenAnywhere(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore(0)

	router := gin.New()
	router.Use(RequireToken(st, nil))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic not-a-bearer")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "INVALID_TOKEN") {
		t.Fatalf("expected INVALID_TOKEN error, got %s", recorder.Body.String())
	}
}
