package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpj17/junior-ledger/internal/dto"
)

type ledgerServiceMock struct {
	state   *dto.LedgerResponse
	postErr error
	resets  int
}

func (m *ledgerServiceMock) Ledger(ctx context.Context) (*dto.LedgerResponse, error) {
	return m.state, nil
}

func (m *ledgerServiceMock) Post(ctx context.Context, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error) {
	if m.postErr != nil {
		return nil, m.postErr
	}
	return m.state, nil
}

func (m *ledgerServiceMock) Reset(ctx context.Context) error {
	m.resets++
	return nil
}

func TestLedgerHandlerState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLedgerHandler(&ledgerServiceMock{state: &dto.LedgerResponse{Balanced: true}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ledger", nil)

	handler.State(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balanced":true`)
}

func TestLedgerHandlerPostRejectsBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLedgerHandler(&ledgerServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/ledger/entries", bytes.NewReader([]byte(`not json`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Post(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLedgerHandlerPostCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLedgerHandler(&ledgerServiceMock{state: &dto.LedgerResponse{Balanced: true}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"description":"Bought supplies","debit":{"account":"Supplies","type":"asset"},"credit":{"account":"Cash","type":"asset"},"amountCents":2500}`)
	c.Request = httptest.NewRequest(http.MethodPost, "/ledger/entries", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Post(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLedgerHandlerReset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &ledgerServiceMock{}
	handler := NewLedgerHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/ledger", nil)

	handler.Reset(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, mock.resets)
}
