package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

type courseGateway interface {
	ListCourses(ctx context.Context, token string) ([]models.Course, error)
	CourseColor(ctx context.Context, token string, courseID int64) (string, error)
}

// CourseService merges live Canvas enrollments with locally persisted
// preferences. Nicknames and the hidden set never leave the store; hiding a
// course only filters it out of listings, its cached data stays put.
type CourseService struct {
	gateway courseGateway
	store   store.Store
	logger  *zap.Logger
}

// CourseServiceParams groups constructor dependencies.
type CourseServiceParams struct {
	Gateway courseGateway
	Store   store.Store
	Logger  *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(params CourseServiceParams) *CourseService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		gateway: params.Gateway,
		store:   params.Store,
		logger:  logger,
	}
}

// List returns the user's courses in Canvas order, with nicknames and hidden
// flags merged in. Hidden courses are dropped unless includeHidden is set.
func (s *CourseService) List(ctx context.Context, token string, includeHidden bool) ([]models.Course, error) {
	courses, err := s.gateway.ListCourses(ctx, token)
	if err != nil {
		return nil, err
	}

	hidden := s.hiddenSet(ctx)
	result := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		course.Hidden = hidden[course.ID]
		if course.Hidden && !includeHidden {
			continue
		}
		course.Nickname = s.nickname(ctx, course.ID)
		result = append(result, course)
	}
	return result, nil
}

// Get returns one course with preferences merged, or ErrNotFound when the
// user is not enrolled in it.
func (s *CourseService) Get(ctx context.Context, token string, courseID int64) (*models.Course, error) {
	courses, err := s.List(ctx, token, true)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].ID == courseID {
			return &courses[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

// Update patches local course preferences and returns the merged course.
// A nil field stays untouched; an empty nickname clears the stored one.
func (s *CourseService) Update(ctx context.Context, token string, courseID int64, req dto.CourseUpdateRequest) (*models.Course, error) {
	course, err := s.Get(ctx, token, courseID)
	if err != nil {
		return nil, err
	}

	if req.Nickname != nil {
		if *req.Nickname == "" {
			if err := s.store.Remove(ctx, store.KeyNickname(courseID)); err != nil {
				return nil, err
			}
		} else if err := s.store.Set(ctx, store.KeyNickname(courseID), *req.Nickname); err != nil {
			return nil, err
		}
		course.Nickname = *req.Nickname
	}

	if req.Hidden != nil {
		if err := s.setHidden(ctx, courseID, *req.Hidden); err != nil {
			return nil, err
		}
		course.Hidden = *req.Hidden
	}

	return course, nil
}

// Color returns the user's Canvas color for a course, serving from the
// store when a previous lookup cached it.
func (s *CourseService) Color(ctx context.Context, token string, courseID int64) (string, error) {
	var cached string
	if err := s.store.Get(ctx, store.KeyColor(courseID), &cached); err == nil {
		return cached, nil
	}

	color, err := s.gateway.CourseColor(ctx, token, courseID)
	if err != nil {
		return "", err
	}
	if color != "" {
		if err := s.store.Set(ctx, store.KeyColor(courseID), color); err != nil {
			s.logger.Warn("caching course color failed", zap.Int64("course_id", courseID), zap.Error(err))
		}
	}
	return color, nil
}

func (s *CourseService) nickname(ctx context.Context, courseID int64) string {
	var nickname string
	if err := s.store.Get(ctx, store.KeyNickname(courseID), &nickname); err != nil {
		return ""
	}
	return nickname
}

func (s *CourseService) hiddenSet(ctx context.Context) map[int64]bool {
	var ids []int64
	if err := s.store.Get(ctx, store.KeyHiddenCourses, &ids); err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("loading hidden courses failed", zap.Error(err))
		}
		return map[int64]bool{}
	}
	hidden := make(map[int64]bool, len(ids))
	for _, id := range ids {
		hidden[id] = true
	}
	return hidden
}

func (s *CourseService) setHidden(ctx context.Context, courseID int64, hidden bool) error {
	set := s.hiddenSet(ctx)
	if hidden {
		set[courseID] = true
	} else {
		delete(set, courseID)
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return s.store.Set(ctx, store.KeyHiddenCourses, ids)
}
