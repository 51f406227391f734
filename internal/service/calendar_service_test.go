package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

type fakeEventGateway struct {
	events   []models.CalendarEvent
	err      error
	gotCodes []string
	gotFrom  time.Time
	gotTo    time.Time
}

func (f *fakeEventGateway) ListCalendarEvents(_ context.Context, _ string, contextCodes []string, start, end time.Time) ([]models.CalendarEvent, error) {
	f.gotCodes = contextCodes
	f.gotFrom = start
	f.gotTo = end
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeFeedFetcher struct {
	events []models.CalendarEvent
	err    error
	calls  int
}

func (f *fakeFeedFetcher) Fetch(context.Context, string) ([]models.CalendarEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func newCalendarService(lister *fakeCourseLister, gateway *fakeEventGateway, feed *fakeFeedFetcher, st store.Store) *CalendarService {
	return NewCalendarService(CalendarServiceParams{
		Courses: lister,
		Colors:  &fakeColorReader{colors: map[int64]string{1: "#1f77b4"}},
		Gateway: gateway,
		Feed:    feed,
		Store:   st,
	})
}

func timedEvent(id, title string, start time.Time) models.CalendarEvent {
	return models.CalendarEvent{ID: id, Title: title, Kind: models.EventKindNative, StartAt: &start}
}

func untimedEvent(id, title, date string) models.CalendarEvent {
	return models.CalendarEvent{ID: id, Title: title, Kind: models.EventKindAssignment, AllDay: true, AllDayDate: date}
}

func TestCalendarServiceMonth_WindowAndGrouping(t *testing.T) {
	outOfWindowStart := time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local)
	shifted := models.CalendarEvent{
		ID: "e-5", Title: "Spirit week", AllDay: true,
		AllDayDate: "2026-03-12", StartAt: &outOfWindowStart,
	}
	gateway := &fakeEventGateway{events: []models.CalendarEvent{
		timedEvent("e-1", "Too early", time.Date(2026, 1, 15, 9, 0, 0, 0, time.Local)),
		timedEvent("e-2", "Too late", time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local)),
		timedEvent("e-3", "First day", time.Date(2026, 2, 1, 10, 0, 0, 0, time.Local)),
		timedEvent("e-4", "Last day", time.Date(2026, 4, 30, 10, 0, 0, 0, time.Local)),
		shifted,
		timedEvent("e-6", "Lecture", time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)),
		untimedEvent("e-7", "Essay due", "2026-03-10"),
		{ID: "e-8", Title: "No date at all"},
	}}
	svc := newCalendarService(&fakeCourseLister{}, gateway, &fakeFeedFetcher{}, store.NewMemoryStore(0))

	resp, err := svc.Month(context.Background(), "token", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, "2026-03", resp.FocusMonth)
	assert.Equal(t, "2026-02-01", resp.From)
	assert.Equal(t, "2026-04-30", resp.To)

	dates := make([]string, 0, len(resp.Days))
	for _, day := range resp.Days {
		dates = append(dates, day.Date)
	}
	assert.Equal(t, []string{"2026-02-01", "2026-03-10", "2026-03-12", "2026-04-30"}, dates)

	// the explicit all-day date wins over the start timestamp
	require.Len(t, resp.Days[2].Events, 1)
	assert.Equal(t, "e-5", resp.Days[2].Events[0].ID)

	// untimed entries sort ahead of timed ones within a day
	require.Len(t, resp.Days[1].Events, 2)
	assert.Equal(t, "Essay due", resp.Days[1].Events[0].Title)
	assert.Equal(t, "Lecture", resp.Days[1].Events[1].Title)
}

func TestGroupEventsByDayOrderInsensitive(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)
	events := []models.CalendarEvent{
		timedEvent("e-2", "Afternoon lab", time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)),
		untimedEvent("e-3", "Reading day", "2026-03-10"),
		timedEvent("e-1", "Morning lecture", time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)),
		untimedEvent("e-4", "Club fair", "2026-03-02"),
	}
	reversed := make([]models.CalendarEvent, len(events))
	for i, event := range events {
		reversed[len(events)-1-i] = event
	}

	first := groupEventsByDay(events, from, to)
	second := groupEventsByDay(reversed, from, to)
	require.Equal(t, first, second)
	assert.Equal(t, first, groupEventsByDay(events, from, to))

	require.Len(t, first, 2)
	assert.Equal(t, "2026-03-02", first[0].Date)
	day := first[1]
	require.Len(t, day.Events, 3)
	assert.Equal(t, "Reading day", day.Events[0].Title)
	assert.Equal(t, "Morning lecture", day.Events[1].Title)
	assert.Equal(t, "Afternoon lab", day.Events[2].Title)
}

func TestCalendarServiceMonth_SelectionNarrowsContexts(t *testing.T) {
	lister := &fakeCourseLister{courses: []models.Course{
		{ID: 1, Name: "Statistics"},
		{ID: 2, Name: "Accounting"},
	}}
	gateway := &fakeEventGateway{}
	st := store.NewMemoryStore(0)
	svc := newCalendarService(lister, gateway, &fakeFeedFetcher{}, st)
	ctx := context.Background()

	_, err := svc.SetSelection(ctx, dto.SelectionRequest{ContextCodes: []string{"course_2"}})
	require.NoError(t, err)

	resp, err := svc.Month(ctx, "token", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, []string{"course_2"}, gateway.gotCodes)

	require.Len(t, resp.Contexts, 2)
	assert.Equal(t, "course_1", resp.Contexts[0].ContextCode)
	assert.False(t, resp.Contexts[0].Selected)
	assert.Equal(t, "#1f77b4", resp.Contexts[0].Color)
	assert.Equal(t, "course_2", resp.Contexts[1].ContextCode)
	assert.True(t, resp.Contexts[1].Selected)
}

func TestCalendarServiceMonth_EmptySelectionShowsEverything(t *testing.T) {
	lister := &fakeCourseLister{courses: []models.Course{
		{ID: 1, Name: "Statistics"},
		{ID: 2, Name: "Accounting"},
	}}
	gateway := &fakeEventGateway{}
	svc := newCalendarService(lister, gateway, &fakeFeedFetcher{}, store.NewMemoryStore(0))

	_, err := svc.Month(context.Background(), "token", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, []string{"course_1", "course_2"}, gateway.gotCodes)
}

func TestCalendarServiceMonth_MergesExternalFeed(t *testing.T) {
	feed := &fakeFeedFetcher{events: []models.CalendarEvent{
		{
			ID: "feed-1", Title: "Club meeting", Kind: models.EventKindFeed,
			ContextCode: models.FeedContextCode, AllDay: true, AllDayDate: "2026-03-11",
		},
	}}
	st := store.NewMemoryStore(0)
	svc := newCalendarService(&fakeCourseLister{}, &fakeEventGateway{}, feed, st)
	ctx := context.Background()

	_, err := svc.SetFeed(ctx, dto.FeedSettingsRequest{URL: "https://example.edu/feed.ics", Enabled: true})
	require.NoError(t, err)

	resp, err := svc.Month(ctx, "token", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.calls)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "feed-1", resp.Days[0].Events[0].ID)

	require.Len(t, resp.Contexts, 1)
	assert.Equal(t, models.FeedContextCode, resp.Contexts[0].ContextCode)
	assert.Equal(t, "External calendar", resp.Contexts[0].Name)
	assert.True(t, resp.Contexts[0].Selected)
}

func TestCalendarServiceMonth_FeedFailureKeepsCanvasEvents(t *testing.T) {
	gateway := &fakeEventGateway{events: []models.CalendarEvent{
		timedEvent("e-1", "Lecture", time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)),
	}}
	feed := &fakeFeedFetcher{err: appErrors.ErrUpstream}
	st := store.NewMemoryStore(0)
	svc := newCalendarService(&fakeCourseLister{}, gateway, feed, st)
	ctx := context.Background()

	_, err := svc.SetFeed(ctx, dto.FeedSettingsRequest{URL: "https://example.edu/feed.ics", Enabled: true})
	require.NoError(t, err)

	resp, err := svc.Month(ctx, "token", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.calls)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "e-1", resp.Days[0].Events[0].ID)
}

func TestCalendarServiceMonth_DeselectedFeedIsNeverFetched(t *testing.T) {
	lister := &fakeCourseLister{courses: []models.Course{{ID: 1, Name: "Statistics"}}}
	feed := &fakeFeedFetcher{}
	st := store.NewMemoryStore(0)
	svc := newCalendarService(lister, &fakeEventGateway{}, feed, st)
	ctx := context.Background()

	_, err := svc.SetFeed(ctx, dto.FeedSettingsRequest{URL: "https://example.edu/feed.ics", Enabled: true})
	require.NoError(t, err)
	_, err = svc.SetSelection(ctx, dto.SelectionRequest{ContextCodes: []string{"course_1"}})
	require.NoError(t, err)

	_, err = svc.Month(ctx, "token", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 0, feed.calls)
}

func TestCalendarServiceMonth_InvalidFocus(t *testing.T) {
	svc := newCalendarService(&fakeCourseLister{}, &fakeEventGateway{}, &fakeFeedFetcher{}, store.NewMemoryStore(0))
	_, err := svc.Month(context.Background(), "token", "03-2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceMonth_DefaultFocusIsCurrentMonth(t *testing.T) {
	gateway := &fakeEventGateway{}
	svc := newCalendarService(&fakeCourseLister{}, gateway, &fakeFeedFetcher{}, store.NewMemoryStore(0))
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local) }

	resp, err := svc.Month(context.Background(), "token", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03", resp.FocusMonth)
	assert.Equal(t, "2026-02-01", resp.From)
	assert.Equal(t, "2026-04-30", resp.To)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local), gateway.gotFrom)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local), gateway.gotTo)
}

func TestCalendarServiceMonth_GatewayErrorPropagates(t *testing.T) {
	svc := newCalendarService(&fakeCourseLister{}, &fakeEventGateway{err: appErrors.ErrInvalidToken}, &fakeFeedFetcher{}, store.NewMemoryStore(0))
	_, err := svc.Month(context.Background(), "token", "2026-03")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceSetSelection_NormalizesCodes(t *testing.T) {
	svc := newCalendarService(&fakeCourseLister{}, &fakeEventGateway{}, &fakeFeedFetcher{}, store.NewMemoryStore(0))
	ctx := context.Background()

	selection, err := svc.SetSelection(ctx, dto.SelectionRequest{ContextCodes: []string{
		" course_1 ", "course_2", "", "course_1",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"course_1", "course_2"}, selection.ContextCodes)

	reloaded, err := svc.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, selection.ContextCodes, reloaded.ContextCodes)
}

func TestCalendarServiceSetFeed_RequiresURLWhenEnabled(t *testing.T) {
	svc := newCalendarService(&fakeCourseLister{}, &fakeEventGateway{}, &fakeFeedFetcher{}, store.NewMemoryStore(0))
	ctx := context.Background()

	_, err := svc.SetFeed(ctx, dto.FeedSettingsRequest{Enabled: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	settings, err := svc.SetFeed(ctx, dto.FeedSettingsRequest{URL: " https://example.edu/feed.ics ", Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, "https://example.edu/feed.ics", settings.URL)
	assert.False(t, settings.Enabled)
}
