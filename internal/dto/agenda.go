package dto

import (
	"time"

	"github.com/danielpj17/junior-ledger/internal/models"
)

// AgendaResponse is the deadline dashboard: an optional exam headline and
// one block per visible course.
type AgendaResponse struct {
	Headline    *ExamHeadline  `json:"headline,omitempty"`
	Courses     []CourseAgenda `json:"courses"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// ExamHeadline is the closest exam-like deadline across all courses.
type ExamHeadline struct {
	CourseID   int64     `json:"courseId"`
	CourseName string    `json:"courseName"`
	Title      string    `json:"title"`
	DueAt      time.Time `json:"dueAt"`
	DaysUntil  int       `json:"daysUntil"`
}

// CourseAgenda is one course's upcoming work. FetchFailed marks a course
// whose assignments could not be loaded this pass; it renders empty rather
// than failing the whole dashboard.
type CourseAgenda struct {
	CourseID     int64               `json:"courseId"`
	CourseName   string              `json:"courseName"`
	Color        string              `json:"color,omitempty"`
	NextDeadline *models.Assignment  `json:"nextDeadline,omitempty"`
	Upcoming     []models.Assignment `json:"upcoming"`
	Exams        []models.Assignment `json:"exams"`
	FetchFailed  bool                `json:"fetchFailed,omitempty"`
}
