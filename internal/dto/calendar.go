package dto

import "github.com/danielpj17/junior-ledger/internal/models"

// CalendarResponse is a three-month window of events bucketed by day,
// centered on the focus month.
type CalendarResponse struct {
	FocusMonth string          `json:"focusMonth"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Days       []CalendarDay   `json:"days"`
	Contexts   []ContextOption `json:"contexts"`
}

// CalendarDay buckets the events of one local date, untimed entries first.
type CalendarDay struct {
	Date   string                 `json:"date"`
	Events []models.CalendarEvent `json:"events"`
}

// ContextOption is one selectable calendar source with its display state.
type ContextOption struct {
	ContextCode string `json:"contextCode"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Selected    bool   `json:"selected"`
}

// SelectionRequest narrows the calendar to the given context codes. An
// empty list restores "all courses".
type SelectionRequest struct {
	ContextCodes []string `json:"contextCodes"`
}

// FeedSettingsRequest points the calendar at an external iCal feed.
type FeedSettingsRequest struct {
	URL     string `json:"url" binding:"omitempty,url"`
	Enabled bool   `json:"enabled"`
}
