package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	"github.com/danielpj17/junior-ledger/pkg/config"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

type courseLister interface {
	List(ctx context.Context, token string, includeHidden bool) ([]models.Course, error)
}

type colorReader interface {
	Color(ctx context.Context, token string, courseID int64) (string, error)
}

type assignmentGateway interface {
	ListAssignments(ctx context.Context, token string, courseID int64) ([]models.Assignment, error)
}

// AgendaService builds the deadline dashboard: per-course upcoming work and
// the closest exam-like deadline across everything. Assignments are served
// through a short-lived per-course cache; one course failing to load
// contributes an empty block instead of blanking the whole view.
type AgendaService struct {
	courses courseLister
	colors  colorReader
	gateway assignmentGateway
	store   store.Store
	logger  *zap.Logger
	cfg     config.AgendaConfig
	now     func() time.Time
}

// AgendaServiceParams groups constructor dependencies.
type AgendaServiceParams struct {
	Courses courseLister
	Colors  colorReader
	Gateway assignmentGateway
	Store   store.Store
	Logger  *zap.Logger
	Config  config.AgendaConfig
}

// NewAgendaService constructs an AgendaService with sane defaults.
func NewAgendaService(params AgendaServiceParams) *AgendaService {
	cfg := params.Config
	if cfg.AssignmentCacheTTL <= 0 {
		cfg.AssignmentCacheTTL = 5 * time.Minute
	}
	if len(cfg.ExamKeywords) == 0 {
		cfg.ExamKeywords = []string{"exam", "final", "midterm", "test"}
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgendaService{
		courses: params.Courses,
		colors:  params.Colors,
		gateway: params.Gateway,
		store:   params.Store,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Agenda composes the dashboard for every visible course. The second return
// reports whether the whole view was served from cached assignments.
func (s *AgendaService) Agenda(ctx context.Context, token string) (*dto.AgendaResponse, bool, error) {
	courses, err := s.courses.List(ctx, token, false)
	if err != nil {
		return nil, false, err
	}

	today := startOfDay(s.now().In(time.Local))
	allCached := len(courses) > 0

	blocks := make([]dto.CourseAgenda, 0, len(courses))
	var headline *dto.ExamHeadline

	for _, course := range courses {
		block := dto.CourseAgenda{
			CourseID:   course.ID,
			CourseName: course.DisplayName(),
			Upcoming:   []models.Assignment{},
			Exams:      []models.Assignment{},
		}
		if color, err := s.colors.Color(ctx, token, course.ID); err == nil {
			block.Color = color
		}

		assignments, fromCache, err := s.courseAssignments(ctx, token, course.ID)
		if err != nil {
			s.logger.Warn("assignment fetch failed, rendering empty course block",
				zap.Int64("course_id", course.ID), zap.Error(err))
			block.FetchFailed = true
			allCached = false
			blocks = append(blocks, block)
			continue
		}
		if !fromCache {
			allCached = false
		}

		block.Upcoming = upcomingAssignments(assignments, today)
		block.Exams = filterExams(block.Upcoming, s.cfg.ExamKeywords)
		if len(block.Upcoming) > 0 {
			next := block.Upcoming[0]
			block.NextDeadline = &next
		}

		for _, exam := range block.Exams {
			if headline == nil || exam.DueAt.Before(headline.DueAt) {
				headline = &dto.ExamHeadline{
					CourseID:   course.ID,
					CourseName: course.DisplayName(),
					Title:      exam.Name,
					DueAt:      *exam.DueAt,
					DaysUntil:  daysUntil(*exam.DueAt, today),
				}
			}
		}
		blocks = append(blocks, block)
	}

	return &dto.AgendaResponse{
		Headline:    headline,
		Courses:     blocks,
		GeneratedAt: s.now().UTC(),
	}, allCached, nil
}

// courseAssignments serves one course's assignments, hitting Canvas only
// when the cached snapshot is older than the TTL.
func (s *AgendaService) courseAssignments(ctx context.Context, token string, courseID int64) ([]models.Assignment, bool, error) {
	var cached models.CachedAssignments
	err := s.store.Get(ctx, store.KeyAssignments(courseID), &cached)
	if err == nil && s.now().Sub(cached.FetchedAt) < s.cfg.AssignmentCacheTTL {
		return cached.Assignments, true, nil
	}
	if err != nil && appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
		s.logger.Warn("assignment cache read failed", zap.Int64("course_id", courseID), zap.Error(err))
	}

	assignments, err := s.gateway.ListAssignments(ctx, token, courseID)
	if err != nil {
		return nil, false, err
	}

	snapshot := models.CachedAssignments{
		CourseID:    courseID,
		FetchedAt:   s.now().UTC(),
		Assignments: assignments,
	}
	if err := s.store.Set(ctx, store.KeyAssignments(courseID), snapshot); err != nil {
		s.logger.Warn("assignment cache write failed", zap.Int64("course_id", courseID), zap.Error(err))
	}
	return assignments, false, nil
}

// upcomingAssignments keeps assignments due today or later that are not yet
// submitted or graded, sorted ascending by due date.
func upcomingAssignments(assignments []models.Assignment, today time.Time) []models.Assignment {
	upcoming := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.DueAt == nil || a.Submitted() {
			continue
		}
		if a.DueAt.In(time.Local).Before(today) {
			continue
		}
		upcoming = append(upcoming, a)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].DueAt.Equal(*upcoming[j].DueAt) {
			return upcoming[i].Name < upcoming[j].Name
		}
		return upcoming[i].DueAt.Before(*upcoming[j].DueAt)
	})
	return upcoming
}

// filterExams keeps assignments whose title contains an exam-like keyword.
func filterExams(assignments []models.Assignment, keywords []string) []models.Assignment {
	exams := make([]models.Assignment, 0)
	for _, a := range assignments {
		name := strings.ToLower(a.Name)
		for _, keyword := range keywords {
			if strings.Contains(name, strings.ToLower(keyword)) {
				exams = append(exams, a)
				break
			}
		}
	}
	return exams
}

// daysUntil counts whole local days from today to the due date; something
// due later today is zero days away.
func daysUntil(due time.Time, today time.Time) int {
	dueDay := startOfDay(due.In(time.Local))
	return int(dueDay.Sub(today).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
