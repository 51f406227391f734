package canvas

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/danielpj17/junior-ledger/internal/models"
)

// Canvas rejects more than ten context codes per calendar request.
const maxContextCodes = 10

// ListCalendarEvents returns native events and assignment-due events for the
// given contexts inside [start, end), already deduplicated by
// (id, context_code): an assignment can surface on both fetch paths.
func (c *Client) ListCalendarEvents(ctx context.Context, token string, contextCodes []string, start, end time.Time) ([]models.CalendarEvent, error) {
	if len(contextCodes) == 0 {
		return nil, nil
	}

	var events []models.CalendarEvent
	seen := make(map[string]struct{})

	for _, chunk := range chunkStrings(contextCodes, maxContextCodes) {
		for _, kind := range []string{"event", "assignment"} {
			fetched, err := c.fetchCalendarEvents(ctx, token, kind, chunk, start, end)
			if err != nil {
				return nil, err
			}
			for _, ev := range fetched {
				if _, dup := seen[ev.DedupeKey()]; dup {
					continue
				}
				seen[ev.DedupeKey()] = struct{}{}
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

func (c *Client) fetchCalendarEvents(ctx context.Context, token, kind string, contextCodes []string, start, end time.Time) ([]models.CalendarEvent, error) {
	query := url.Values{}
	query.Set("type", kind)
	query.Set("start_date", start.Format("2006-01-02"))
	query.Set("end_date", end.Format("2006-01-02"))
	for _, code := range contextCodes {
		query.Add("context_codes[]", code)
	}

	var wire []wireCalendarEvent
	if err := c.getJSON(ctx, token, "calendar_events", "/api/v1/calendar_events", query, &wire); err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(wire))
	for _, w := range wire {
		ev := models.CalendarEvent{
			ID:          string(w.ID),
			Title:       w.Title,
			ContextCode: w.ContextCode,
			Kind:        mapEventKind(kind, string(w.ID)),
			StartAt:     w.StartAt,
			EndAt:       w.EndAt,
			AllDay:      w.AllDay,
			AllDayDate:  w.AllDayDate,
			Location:    w.LocationName,
			HTMLURL:     w.HTMLURL,
		}
		events = append(events, ev)
	}
	return events, nil
}

// mapEventKind trusts the requested type but also recognizes the synthetic
// "assignment_<id>" ids Canvas mints for due-date events.
func mapEventKind(requested, id string) string {
	if requested == "assignment" || strings.HasPrefix(id, "assignment_") {
		return models.EventKindAssignment
	}
	return models.EventKindNative
}

func chunkStrings(items []string, size int) [][]string {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// wireCalendarEvent mirrors the Canvas calendar object. IDs are numeric for
// native events and strings like "assignment_123" for due-date events, so
// the field decodes both.
type wireCalendarEvent struct {
	ID           flexID     `json:"id"`
	Title        string     `json:"title"`
	ContextCode  string     `json:"context_code"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	AllDay       bool       `json:"all_day"`
	AllDayDate   string     `json:"all_day_date"`
	LocationName string     `json:"location_name"`
	HTMLURL      string     `json:"html_url"`
}

type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	*f = flexID(strings.Trim(string(b), `"`))
	return nil
}
