package canvas

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/models"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// FileDownload carries downloaded bytes plus the metadata captured in the
// same call, so freshness stamps reflect download time rather than the
// listing that triggered it.
type FileDownload struct {
	Data        []byte
	Name        string
	ContentType string
	Size        int64
	ModifiedAt  time.Time
}

// ListFiles returns the files visible in a course's file area.
func (c *Client) ListFiles(ctx context.Context, token string, courseID int64) ([]models.CourseFile, error) {
	path := fmt.Sprintf("/api/v1/courses/%d/files", courseID)

	var wire []wireFile
	if err := c.getJSON(ctx, token, "files", path, nil, &wire); err != nil {
		return nil, err
	}
	return mapFiles(wire), nil
}

// ListFolders returns every folder of a course, including restricted ones;
// classification is the prober's job.
func (c *Client) ListFolders(ctx context.Context, token string, courseID int64) ([]models.Folder, error) {
	path := fmt.Sprintf("/api/v1/courses/%d/folders", courseID)

	var wire []wireFolder
	if err := c.getJSON(ctx, token, "folders", path, nil, &wire); err != nil {
		return nil, err
	}

	folders := make([]models.Folder, 0, len(wire))
	for _, w := range wire {
		folders = append(folders, models.Folder{
			ID:         w.ID,
			Name:       w.Name,
			FullName:   w.FullName,
			FilesCount: w.FilesCount,
			Hidden:     w.Hidden || w.HiddenForUser,
			Locked:     w.Locked || w.LockedForUser,
		})
	}
	return folders, nil
}

// ListFolderFiles expands one folder. Permission and not-found answers
// resolve to an empty list rather than an error; the reconciler compares the
// result against the folder's claimed file count.
func (c *Client) ListFolderFiles(ctx context.Context, token string, folderID int64) ([]models.CourseFile, error) {
	path := fmt.Sprintf("/api/v1/folders/%d/files", folderID)

	var wire []wireFile
	if err := c.getJSON(ctx, token, "folder_files", path, nil, &wire); err != nil {
		code := appErrors.FromError(err).Code
		if code == appErrors.ErrForbidden.Code || code == appErrors.ErrNotFound.Code {
			return nil, nil
		}
		return nil, err
	}
	return mapFiles(wire), nil
}

// ProbeFolderAccess classifies a folder for the sync planner. Only an
// explicit 403 marks it restricted; success, not-found and transport errors
// all count as accessible, so a flaky network can never hide course content.
func (c *Client) ProbeFolderAccess(ctx context.Context, token string, folderID int64) bool {
	query := url.Values{}
	query.Set("per_page", "1")
	query.Add("only[]", "names")
	rawURL := fmt.Sprintf("%s/api/v1/folders/%d/files?%s", c.baseURL, folderID, query.Encode())

	status, _, err := c.get(ctx, token, "folder_probe", rawURL)
	if err != nil {
		c.logger.Debug("folder probe errored, assuming accessible",
			zap.Int64("folder_id", folderID), zap.Error(err))
		return true
	}
	return status != http.StatusForbidden
}

// DownloadFile fetches a file's current metadata and bytes in one pass.
func (c *Client) DownloadFile(ctx context.Context, token string, fileID int64) (*FileDownload, error) {
	path := fmt.Sprintf("/api/v1/files/%d", fileID)

	var meta wireFile
	if err := c.getJSON(ctx, token, "file", path, nil, &meta); err != nil {
		return nil, err
	}
	if meta.URL == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "Canvas did not provide a download URL")
	}

	data, err := c.fetchBody(ctx, token, meta.URL)
	if err != nil {
		return nil, err
	}

	modifiedAt := time.Time{}
	if meta.ModifiedAt != nil {
		modifiedAt = *meta.ModifiedAt
	}
	return &FileDownload{
		Data:        data,
		Name:        meta.DisplayName,
		ContentType: meta.ContentType,
		Size:        int64(len(data)),
		ModifiedAt:  modifiedAt,
	}, nil
}

// fetchBody downloads from a (possibly off-host) URL. The bearer token is
// only attached when the URL stays on the Canvas host; S3-style redirect
// targets already carry a verifier and must not see the token.
func (c *Client) fetchBody(ctx context.Context, token, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build download request")
	}
	if sameHost(c.baseURL, rawURL) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe("download", 0, duration)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "download failed")
	}
	defer resp.Body.Close()

	c.observe("download", resp.StatusCode, duration)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("download responded with status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read download body")
	}
	if int64(len(data)) > c.maxDownload {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the cacheable size limit")
	}
	return data, nil
}

func sameHost(baseURL, rawURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return base.Host == target.Host
}

func mapFiles(wire []wireFile) []models.CourseFile {
	files := make([]models.CourseFile, 0, len(wire))
	for _, w := range wire {
		f := models.CourseFile{
			ID:          w.ID,
			FolderID:    w.FolderID,
			Name:        w.DisplayName,
			ContentType: w.ContentType,
			Size:        w.Size,
			URL:         w.URL,
			Locked:      w.Locked || w.LockedForUser,
			Hidden:      w.Hidden || w.HiddenForUser,
		}
		if f.Name == "" {
			f.Name = w.Filename
		}
		if w.ModifiedAt != nil {
			f.ModifiedAt = *w.ModifiedAt
		}
		files = append(files, f)
	}
	return files
}

// wireFile mirrors the Canvas Files API object. Canvas really does use a
// hyphenated "content-type" key here.
type wireFile struct {
	ID            int64      `json:"id"`
	FolderID      int64      `json:"folder_id"`
	DisplayName   string     `json:"display_name"`
	Filename      string     `json:"filename"`
	ContentType   string     `json:"content-type"`
	URL           string     `json:"url"`
	Size          int64      `json:"size"`
	ModifiedAt    *time.Time `json:"modified_at"`
	Locked        bool       `json:"locked"`
	Hidden        bool       `json:"hidden"`
	LockedForUser bool       `json:"locked_for_user"`
	HiddenForUser bool       `json:"hidden_for_user"`
}

type wireFolder struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	FilesCount    int    `json:"files_count"`
	Hidden        bool   `json:"hidden"`
	Locked        bool   `json:"locked"`
	HiddenForUser bool   `json:"hidden_for_user"`
	LockedForUser bool   `json:"locked_for_user"`
}
