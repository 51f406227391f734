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
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

type eventGateway interface {
	ListCalendarEvents(ctx context.Context, token string, contextCodes []string, start, end time.Time) ([]models.CalendarEvent, error)
}

type feedFetcher interface {
	Fetch(ctx context.Context, url string) ([]models.CalendarEvent, error)
}

// feedContextName labels the external feed in the context picker.
const feedContextName = "External calendar"

// CalendarService merges Canvas events, assignment deadlines and an
// optional external iCal feed into day buckets over a three-month window.
// The user's context selection persists and defaults to everything.
type CalendarService struct {
	courses courseLister
	colors  colorReader
	gateway eventGateway
	feed    feedFetcher
	store   store.Store
	logger  *zap.Logger
	now     func() time.Time
}

// CalendarServiceParams groups constructor dependencies.
type CalendarServiceParams struct {
	Courses courseLister
	Colors  colorReader
	Gateway eventGateway
	Feed    feedFetcher
	Store   store.Store
	Logger  *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(params CalendarServiceParams) *CalendarService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		courses: params.Courses,
		colors:  params.Colors,
		gateway: params.Gateway,
		feed:    params.Feed,
		store:   params.Store,
		logger:  logger,
		now:     time.Now,
	}
}

// Month returns the calendar for the month before, of and after the focus
// month. An empty focus means the current month.
func (s *CalendarService) Month(ctx context.Context, token, focusMonth string) (*dto.CalendarResponse, error) {
	focus, err := s.parseFocus(focusMonth)
	if err != nil {
		return nil, err
	}
	from := time.Date(focus.Year(), focus.Month()-1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(focus.Year(), focus.Month()+2, 1, 0, 0, 0, 0, time.Local)

	courses, err := s.courses.List(ctx, token, false)
	if err != nil {
		return nil, err
	}

	selection, err := s.Selection(ctx)
	if err != nil {
		s.logger.Warn("loading calendar selection failed, showing everything", zap.Error(err))
		selection = models.CalendarSelection{}
	}

	contextCodes := make([]string, 0, len(courses))
	for _, course := range courses {
		if selection.Includes(course.ContextCode()) {
			contextCodes = append(contextCodes, course.ContextCode())
		}
	}

	events, err := s.gateway.ListCalendarEvents(ctx, token, contextCodes, from, to)
	if err != nil {
		return nil, err
	}

	feedSettings := s.feedSettings(ctx)
	if feedSettings.Enabled && feedSettings.URL != "" && selection.Includes(models.FeedContextCode) {
		feedEvents, err := s.feed.Fetch(ctx, feedSettings.URL)
		if err != nil {
			s.logger.Warn("calendar feed fetch failed, continuing without it",
				zap.String("url", feedSettings.URL), zap.Error(err))
		} else {
			events = append(events, feedEvents...)
		}
	}

	return &dto.CalendarResponse{
		FocusMonth: focus.Format("2006-01"),
		From:       from.Format("2006-01-02"),
		To:         to.AddDate(0, 0, -1).Format("2006-01-02"),
		Days:       groupEventsByDay(events, from, to),
		Contexts:   s.contextOptions(ctx, token, courses, selection, feedSettings),
	}, nil
}

// Selection returns the persisted context selection; absent means "all".
func (s *CalendarService) Selection(ctx context.Context) (models.CalendarSelection, error) {
	var selection models.CalendarSelection
	if err := s.store.Get(ctx, store.KeyCalendarSelection, &selection); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return models.CalendarSelection{}, nil
		}
		return models.CalendarSelection{}, err
	}
	return selection, nil
}

// SetSelection persists a narrowed context selection. An empty list
// restores "all courses".
func (s *CalendarService) SetSelection(ctx context.Context, req dto.SelectionRequest) (models.CalendarSelection, error) {
	seen := make(map[string]struct{}, len(req.ContextCodes))
	codes := make([]string, 0, len(req.ContextCodes))
	for _, code := range req.ContextCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	selection := models.CalendarSelection{ContextCodes: codes}
	if err := s.store.Set(ctx, store.KeyCalendarSelection, selection); err != nil {
		return models.CalendarSelection{}, err
	}
	return selection, nil
}

// Feed returns the persisted external feed settings.
func (s *CalendarService) Feed(ctx context.Context) (models.FeedSettings, error) {
	var settings models.FeedSettings
	if err := s.store.Get(ctx, store.KeyFeedSettings, &settings); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return models.FeedSettings{}, nil
		}
		return models.FeedSettings{}, err
	}
	return settings, nil
}

// SetFeed persists the external feed settings.
func (s *CalendarService) SetFeed(ctx context.Context, req dto.FeedSettingsRequest) (models.FeedSettings, error) {
	if req.Enabled && strings.TrimSpace(req.URL) == "" {
		return models.FeedSettings{}, appErrors.Clone(appErrors.ErrValidation, "a feed URL is required to enable the feed")
	}
	settings := models.FeedSettings{URL: strings.TrimSpace(req.URL), Enabled: req.Enabled}
	if err := s.store.Set(ctx, store.KeyFeedSettings, settings); err != nil {
		return models.FeedSettings{}, err
	}
	return settings, nil
}

func (s *CalendarService) parseFocus(focusMonth string) (time.Time, error) {
	if focusMonth == "" {
		now := s.now().In(time.Local)
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), nil
	}
	focus, err := time.ParseInLocation("2006-01", focusMonth, time.Local)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "month must look like 2026-01")
	}
	return focus, nil
}

func (s *CalendarService) feedSettings(ctx context.Context) models.FeedSettings {
	settings, err := s.Feed(ctx)
	if err != nil {
		s.logger.Warn("loading feed settings failed", zap.Error(err))
		return models.FeedSettings{}
	}
	return settings
}

func (s *CalendarService) contextOptions(ctx context.Context, token string, courses []models.Course, selection models.CalendarSelection, feed models.FeedSettings) []dto.ContextOption {
	options := make([]dto.ContextOption, 0, len(courses)+1)
	for _, course := range courses {
		option := dto.ContextOption{
			ContextCode: course.ContextCode(),
			Name:        course.DisplayName(),
			Selected:    selection.Includes(course.ContextCode()),
		}
		if color, err := s.colors.Color(ctx, token, course.ID); err == nil {
			option.Color = color
		}
		options = append(options, option)
	}
	if feed.Enabled {
		options = append(options, dto.ContextOption{
			ContextCode: models.FeedContextCode,
			Name:        feedContextName,
			Selected:    selection.Includes(models.FeedContextCode),
		})
	}
	return options
}

// groupEventsByDay buckets events by local calendar date within the window.
// The explicit all-day date wins over any start timestamp; events with
// neither are dropped. Days come back sorted, untimed entries first within
// each day.
func groupEventsByDay(events []models.CalendarEvent, from, to time.Time) []dto.CalendarDay {
	buckets := make(map[string][]models.CalendarEvent)
	for _, event := range events {
		date, ok := bucketDate(event)
		if !ok {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil || day.Before(from) || !day.Before(to) {
			continue
		}
		buckets[date] = append(buckets[date], event)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	days := make([]dto.CalendarDay, 0, len(dates))
	for _, date := range dates {
		events := buckets[date]
		sortDayEvents(events)
		days = append(days, dto.CalendarDay{Date: date, Events: events})
	}
	return days
}

func bucketDate(event models.CalendarEvent) (string, bool) {
	if event.AllDayDate != "" {
		return event.AllDayDate, true
	}
	if event.StartAt != nil {
		return event.StartAt.In(time.Local).Format("2006-01-02"), true
	}
	return "", false
}

// sortDayEvents orders one day's bucket: untimed events first by title,
// then timed events by start time.
func sortDayEvents(events []models.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		aTimed := !a.AllDay && a.StartAt != nil
		bTimed := !b.AllDay && b.StartAt != nil
		if aTimed != bTimed {
			return !aTimed
		}
		if !aTimed {
			return a.Title < b.Title
		}
		if !a.StartAt.Equal(*b.StartAt) {
			return a.StartAt.Before(*b.StartAt)
		}
		return a.Title < b.Title
	})
}
