package dto

import "github.com/danielpj17/junior-ledger/internal/models"

// ChatRequest is one user turn for a course conversation.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	TutorMode bool   `json:"tutorMode"`
}

// Citation maps a bracketed number in the assistant's reply to the source
// document it cites.
type Citation struct {
	Index    int    `json:"index"`
	FileName string `json:"fileName"`
}

// ChatResponse carries the assistant's reply with resolved citations.
type ChatResponse struct {
	Message   models.ChatMessage `json:"message"`
	Citations []Citation         `json:"citations,omitempty"`
}

// ChatHistoryResponse is the persisted conversation for one course.
type ChatHistoryResponse struct {
	CourseID int64                `json:"courseId"`
	Messages []models.ChatMessage `json:"messages"`
}
