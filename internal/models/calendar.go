package models

import (
	"fmt"
	"time"
)

// Calendar event kinds.
const (
	EventKindNative     = "event"
	EventKindAssignment = "assignment"
	EventKindFeed       = "feed"
)

// FeedContextCode tags events merged in from an external iCal feed so they
// pass the course selection filter independently of Canvas contexts.
const FeedContextCode = "feed"

// CourseContextCode builds the Canvas calendar context code for a course id.
func CourseContextCode(courseID int64) string {
	return fmt.Sprintf("course_%d", courseID)
}

// CalendarEvent is the unified event shape across native Canvas events,
// synthesized assignment deadlines and external feed entries. Untimed events
// carry AllDayDate (local YYYY-MM-DD); StartAt may be nil when only the date
// is known.
type CalendarEvent struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ContextCode string     `json:"context_code"`
	Kind        string     `json:"kind"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	AllDay      bool       `json:"all_day"`
	AllDayDate  string     `json:"all_day_date,omitempty"`
	Location    string     `json:"location,omitempty"`
	HTMLURL     string     `json:"html_url,omitempty"`
}

// DedupeKey identifies an event across the native and assignment-derived
// fetch paths, which can both yield the same assignment.
func (e CalendarEvent) DedupeKey() string {
	return e.ID + "|" + e.ContextCode
}

// CalendarSelection narrows the calendar to a subset of context codes.
// An empty list means every context is shown.
type CalendarSelection struct {
	ContextCodes []string `json:"context_codes"`
}

// Includes reports whether the selection admits the given context code.
func (s CalendarSelection) Includes(contextCode string) bool {
	if len(s.ContextCodes) == 0 {
		return true
	}
	for _, code := range s.ContextCodes {
		if code == contextCode {
			return true
		}
	}
	return false
}
