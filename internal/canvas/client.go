// Package canvas is the outbound gateway to the Canvas LMS REST API. Every
// method is stateless and takes the caller's access token; persistence and
// freshness decisions stay with the services. List endpoints request one
// page of up to PerPage items and never follow Link headers: courses beyond
// that bound are out of scope by contract.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/pkg/config"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// RequestObserver receives one observation per Canvas API call.
type RequestObserver interface {
	ObserveCanvasRequest(resource string, status int, duration time.Duration)
}

// apiBodyLimit caps JSON API responses; file payloads have their own,
// configurable cap.
const apiBodyLimit = 8 << 20

// ClientParams configures the gateway.
type ClientParams struct {
	Config           config.CanvasConfig
	MaxDownloadBytes int64
	Logger           *zap.Logger
	Observer         RequestObserver
}

// Client talks to one Canvas instance.
type Client struct {
	baseURL     string
	perPage     int
	maxDownload int64
	http        *http.Client
	logger      *zap.Logger
	observer    RequestObserver
}

// NewClient builds a Canvas gateway from configuration.
func NewClient(p ClientParams) *Client {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	perPage := p.Config.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	timeout := p.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxDownload := p.MaxDownloadBytes
	if maxDownload <= 0 {
		maxDownload = 20 * 1024 * 1024
	}

	return &Client{
		baseURL:     strings.TrimRight(p.Config.BaseURL, "/"),
		perPage:     perPage,
		maxDownload: maxDownload,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
		observer:    p.Observer,
	}
}

// ListCourses returns the user's active enrollments.
func (c *Client) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	query := url.Values{}
	query.Set("enrollment_state", "active")

	var wire []wireCourse
	if err := c.getJSON(ctx, token, "courses", "/api/v1/courses", query, &wire); err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(wire))
	for _, w := range wire {
		if w.ID == 0 || w.Name == "" {
			continue
		}
		courses = append(courses, models.Course{
			ID:         w.ID,
			Name:       w.Name,
			CourseCode: w.CourseCode,
		})
	}
	return courses, nil
}

// CourseColor returns the user's color hex for a course, empty when unset.
func (c *Client) CourseColor(ctx context.Context, token string, courseID int64) (string, error) {
	path := fmt.Sprintf("/api/v1/users/self/colors/course_%d", courseID)

	var wire struct {
		Hexcode string `json:"hexcode"`
	}
	if err := c.getJSON(ctx, token, "colors", path, nil, &wire); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			return "", nil
		}
		return "", err
	}
	return wire.Hexcode, nil
}

// ListAssignments returns a course's assignments with the caller's
// submission state flattened in.
func (c *Client) ListAssignments(ctx context.Context, token string, courseID int64) ([]models.Assignment, error) {
	path := fmt.Sprintf("/api/v1/courses/%d/assignments", courseID)
	query := url.Values{}
	query.Add("include[]", "submission")

	var wire []wireAssignment
	if err := c.getJSON(ctx, token, "assignments", path, query, &wire); err != nil {
		return nil, err
	}

	assignments := make([]models.Assignment, 0, len(wire))
	for _, w := range wire {
		a := models.Assignment{
			ID:             w.ID,
			CourseID:       courseID,
			Name:           w.Name,
			DueAt:          w.DueAt,
			PointsPossible: w.PointsPossible,
			HTMLURL:        w.HTMLURL,
		}
		if w.Submission != nil {
			a.SubmissionState = w.Submission.WorkflowState
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// getJSON performs an authorized GET against the Canvas API and decodes the
// body into out. per_page is always pinned; pagination is never followed.
func (c *Client) getJSON(ctx context.Context, token, resource, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(c.perPage))

	status, body, err := c.get(ctx, token, resource, c.baseURL+path+"?"+query.Encode())
	if err != nil {
		return err
	}
	if status >= http.StatusMultipleChoices {
		return c.apiError(resource, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"Canvas returned an unreadable response")
	}
	return nil
}

// get runs the request and returns status plus body. Transport errors are
// wrapped as upstream failures; HTTP status interpretation stays with the
// caller.
func (c *Client) get(ctx context.Context, token, resource, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build Canvas request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(resource, 0, duration)
		return 0, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"Canvas is unreachable")
	}
	defer resp.Body.Close()

	c.observe(resource, resp.StatusCode, duration)

	body, err := io.ReadAll(io.LimitReader(resp.Body, apiBodyLimit))
	if err != nil {
		return resp.StatusCode, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"read Canvas response")
	}
	return resp.StatusCode, body, nil
}

func (c *Client) apiError(resource string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return appErrors.ErrInvalidToken
	case http.StatusForbidden:
		return appErrors.ErrForbidden
	case http.StatusNotFound:
		return appErrors.ErrNotFound
	default:
		c.logger.Warn("canvas request failed",
			zap.String("resource", resource),
			zap.Int("status", status),
			zap.ByteString("body", truncateBody(body)))
		return appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("Canvas responded with status %d", status))
	}
}

func (c *Client) observe(resource string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveCanvasRequest(resource, status, duration)
	}
}

func truncateBody(body []byte) []byte {
	const max = 256
	if len(body) > max {
		return body[:max]
	}
	return body
}

type wireCourse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

type wireAssignment struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	DueAt          *time.Time `json:"due_at"`
	PointsPossible float64    `json:"points_possible"`
	HTMLURL        string     `json:"html_url"`
	Submission     *struct {
		WorkflowState string `json:"workflow_state"`
	} `json:"submission"`
}
