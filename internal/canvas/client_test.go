package canvas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpj17/junior-ledger/pkg/config"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

func newServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := newServer(t, handler)

	client := NewClient(ClientParams{
		Config: config.CanvasConfig{
			BaseURL:        server.URL,
			PerPage:        100,
			RequestTimeout: 5 * time.Second,
		},
	})
	return client, server
}

func TestListCourses(t *testing.T) {
	var gotAuth, gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 101, "name": "Accounting I", "course_code": "ACC-101"},
			{"id": 102, "name": "", "course_code": "restricted shell"},
			{"id": 103, "name": "Statistics", "course_code": "STAT-200"}
		]`))
	}))

	courses, err := client.ListCourses(context.Background(), "tok-123")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Contains(t, gotQuery, "per_page=100")
	assert.Contains(t, gotQuery, "enrollment_state=active")

	require.Len(t, courses, 2, "nameless enrollment shells are dropped")
	assert.Equal(t, int64(101), courses[0].ID)
	assert.Equal(t, "ACC-101", courses[0].CourseCode)
	assert.Equal(t, "Statistics", courses[1].Name)
}

func TestListCoursesRejectedToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListCourses(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestListCoursesUpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.ListCourses(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestCourseColor(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/users/self/colors/course_42":
			_, _ = w.Write([]byte(`{"hexcode": "#1f77b4"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	color, err := client.CourseColor(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, "#1f77b4", color)

	color, err = client.CourseColor(context.Background(), "tok", 7)
	require.NoError(t, err, "unset colors are not an error")
	assert.Empty(t, color)
}

func TestListAssignmentsFlattensSubmission(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/9/assignments", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "include%5B%5D=submission")
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "Problem Set 1", "due_at": "2026-09-10T23:59:00Z",
			 "points_possible": 20, "submission": {"workflow_state": "submitted"}},
			{"id": 2, "name": "Problem Set 2", "due_at": null, "points_possible": 20}
		]`))
	}))

	assignments, err := client.ListAssignments(context.Background(), "tok", 9)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	assert.Equal(t, int64(9), assignments[0].CourseID)
	assert.Equal(t, "submitted", assignments[0].SubmissionState)
	assert.True(t, assignments[0].Submitted())

	assert.Nil(t, assignments[1].DueAt)
	assert.Empty(t, assignments[1].SubmissionState)
	assert.False(t, assignments[1].Submitted())
}
