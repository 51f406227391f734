// Package ical fetches and normalizes external calendar feeds (holiday
// calendars, club schedules) into the shared event shape.
package ical

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/models"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// feedBodyLimit caps feed downloads; public ICS files are small and a
// misconfigured URL should not buffer arbitrary data.
const feedBodyLimit = 2 << 20

// FeedClient downloads and parses one iCal feed per call.
type FeedClient struct {
	http   *http.Client
	logger *zap.Logger
}

// NewFeedClient builds a feed client with the given fetch timeout.
func NewFeedClient(timeout time.Duration, logger *zap.Logger) *FeedClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedClient{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch downloads the feed and returns its events in the unified shape.
// Multi-day all-day entries are expanded to one event per covered day.
func (f *FeedClient) Fetch(ctx context.Context, url string) ([]models.CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			"feed URL is not usable")
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"calendar feed is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("calendar feed responded with status %d", resp.StatusCode))
	}

	return f.parse(io.LimitReader(resp.Body, feedBodyLimit))
}

func (f *FeedClient) parse(r io.Reader) ([]models.CalendarEvent, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"calendar feed is not valid iCal")
	}

	var events []models.CalendarEvent
	for _, item := range cal.Events() {
		converted, ok := f.convert(item)
		if !ok {
			continue
		}
		events = append(events, converted...)
	}
	return events, nil
}

// convert maps one VEVENT; all-day entries spanning several days fan out to
// one event per day, since the month view buckets by day.
func (f *FeedClient) convert(event *ics.VEvent) ([]models.CalendarEvent, bool) {
	uid := propValue(event, ics.ComponentPropertyUniqueId)
	title := propValue(event, ics.ComponentPropertySummary)
	location := propValue(event, ics.ComponentPropertyLocation)
	if title == "" {
		return nil, false
	}

	allDay := isAllDay(event)

	if !allDay {
		start, err := event.GetStartAt()
		if err != nil {
			// Some feeds publish date-only starts without VALUE=DATE.
			allDay = true
		} else {
			var endPtr *time.Time
			if end, endErr := event.GetEndAt(); endErr == nil {
				endPtr = &end
			}
			return []models.CalendarEvent{{
				ID:          feedEventID(uid, start.Format("2006-01-02")),
				Title:       title,
				ContextCode: models.FeedContextCode,
				Kind:        models.EventKindFeed,
				StartAt:     &start,
				EndAt:       endPtr,
				Location:    location,
			}}, true
		}
	}

	start, err := event.GetAllDayStartAt()
	if err != nil {
		f.logger.Debug("skipping feed event without usable start", zap.String("uid", uid))
		return nil, false
	}
	end, err := event.GetAllDayEndAt()
	if err != nil || !end.After(start) {
		// DTEND is exclusive for all-day events; a missing one means one day.
		end = start.AddDate(0, 0, 1)
	}

	var expanded []models.CalendarEvent
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		expanded = append(expanded, models.CalendarEvent{
			ID:          feedEventID(uid, date),
			Title:       title,
			ContextCode: models.FeedContextCode,
			Kind:        models.EventKindFeed,
			AllDay:      true,
			AllDayDate:  date,
			Location:    location,
		})
	}
	return expanded, len(expanded) > 0
}

func isAllDay(event *ics.VEvent) bool {
	prop := event.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return false
	}
	values, ok := prop.ICalParameters["VALUE"]
	return ok && len(values) > 0 && values[0] == "DATE"
}

func propValue(event *ics.VEvent, name ics.ComponentProperty) string {
	prop := event.GetProperty(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}

func feedEventID(uid, date string) string {
	if uid == "" {
		uid = "feed-event"
	}
	return fmt.Sprintf("%s_%s", uid, date)
}
