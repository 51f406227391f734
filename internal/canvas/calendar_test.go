package canvas

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCalendarEventsDeduplicatesAcrossKinds(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("type") {
		case "event":
			// Canvas can surface an assignment on the native path too.
			_, _ = w.Write([]byte(`[
				{"id": 500, "title": "Lecture", "context_code": "course_1",
				 "start_at": "2026-09-02T10:00:00Z", "end_at": "2026-09-02T11:00:00Z"},
				{"id": "assignment_77", "title": "PS1 due", "context_code": "course_1",
				 "all_day": true, "all_day_date": "2026-09-05"}
			]`))
		case "assignment":
			_, _ = w.Write([]byte(`[
				{"id": "assignment_77", "title": "PS1 due", "context_code": "course_1",
				 "all_day": true, "all_day_date": "2026-09-05"}
			]`))
		default:
			t.Errorf("unexpected type %q", r.URL.Query().Get("type"))
		}
	}))

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	events, err := client.ListCalendarEvents(context.Background(), "tok", []string{"course_1"}, start, end)
	require.NoError(t, err)
	require.Len(t, events, 2, "assignment_77 appears once despite two fetch paths")

	byID := map[string]string{}
	for _, ev := range events {
		byID[ev.ID] = ev.Kind
	}
	assert.Equal(t, "event", byID["500"])
	assert.Equal(t, "assignment", byID["assignment_77"])
}

func TestListCalendarEventsChunksContextCodes(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		codes := r.URL.Query()["context_codes[]"]
		assert.LessOrEqual(t, len(codes), 10, "Canvas rejects more than ten contexts")
		_, _ = w.Write([]byte(`[]`))
	}))

	contexts := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		contexts = append(contexts, fmt.Sprintf("course_%d", i))
	}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.ListCalendarEvents(context.Background(), "tok", contexts, start, start.AddDate(0, 3, 0))
	require.NoError(t, err)

	// Three chunks of context codes, each fetched for two event kinds.
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestListCalendarEventsEmptyContexts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without contexts")
	}))

	events, err := client.ListCalendarEvents(context.Background(), "tok", nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
}
