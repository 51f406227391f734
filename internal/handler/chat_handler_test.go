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
	"github.com/danielpj17/junior-ledger/internal/models"
)

type chatServiceMock struct {
	gotCourseID int64
	gotReq      dto.ChatRequest
	sendErr     error
	cleared     int64
}

func (m *chatServiceMock) Send(ctx context.Context, token string, courseID int64, req dto.ChatRequest) (*dto.ChatResponse, error) {
	m.gotCourseID = courseID
	m.gotReq = req
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &dto.ChatResponse{
		Message:   models.ChatMessage{Sender: models.ChatSenderAssistant, Text: "see section 2 [1]"},
		Citations: []dto.Citation{{Index: 1, FileName: "notes.pdf"}},
	}, nil
}

func (m *chatServiceMock) History(ctx context.Context, courseID int64) ([]models.ChatMessage, error) {
	return []models.ChatMessage{}, nil
}

func (m *chatServiceMock) Clear(ctx context.Context, courseID int64) error {
	m.cleared = courseID
	return nil
}

func TestChatHandlerSend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &chatServiceMock{}
	handler := NewChatHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/7/chat", bytes.NewReader([]byte(`{"message":"what is on the exam?","tutorMode":true}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "courseID", Value: "7"}}

	handler.Send(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), mock.gotCourseID)
	assert.True(t, mock.gotReq.TutorMode)
	assert.Contains(t, w.Body.String(), "notes.pdf")
}

func TestChatHandlerSendRequiresMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(&chatServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/courses/7/chat", bytes.NewReader([]byte(`{"tutorMode":true}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "courseID", Value: "7"}}

	handler.Send(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandlerClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &chatServiceMock{}
	handler := NewChatHandler(mock)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/courses/7/chat", nil)
	c.Params = gin.Params{{Key: "courseID", Value: "7"}}

	handler.Clear(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(7), mock.cleared)
}
