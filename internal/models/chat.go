package models

import "time"

// Chat message senders.
const (
	ChatSenderUser      = "user"
	ChatSenderAssistant = "assistant"
)

// ChatMessage is one turn of a per-course assistant conversation.
type ChatMessage struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}
