package models

import "time"

// Submission workflow states that count as already handled for agenda
// purposes.
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Assignment is a Canvas assignment with its submission state flattened in.
type Assignment struct {
	ID              int64      `json:"id"`
	CourseID        int64      `json:"course_id"`
	Name            string     `json:"name"`
	DueAt           *time.Time `json:"due_at,omitempty"`
	PointsPossible  float64    `json:"points_possible"`
	HTMLURL         string     `json:"html_url,omitempty"`
	SubmissionState string     `json:"submission_state,omitempty"`
}

// Submitted reports whether the assignment no longer needs attention.
func (a Assignment) Submitted() bool {
	return a.SubmissionState == SubmissionSubmitted || a.SubmissionState == SubmissionGraded
}

// CachedAssignments is the short-lived per-course assignment snapshot kept
// in the store between refresh cycles.
type CachedAssignments struct {
	CourseID    int64        `json:"course_id"`
	FetchedAt   time.Time    `json:"fetched_at"`
	Assignments []Assignment `json:"assignments"`
}
