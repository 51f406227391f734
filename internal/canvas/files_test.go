package canvas

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpj17/junior-ledger/pkg/config"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

func TestListFilesMapsWireShape(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/courses/5/files", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 11, "folder_id": 3, "display_name": "syllabus.pdf",
			 "content-type": "application/pdf", "size": 1234,
			 "modified_at": "2026-02-01T10:00:00Z", "url": "https://files/11"},
			{"id": 12, "folder_id": 3, "display_name": "", "filename": "notes.docx",
			 "content-type": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			 "locked_for_user": true}
		]`))
	}))

	files, err := client.ListFiles(context.Background(), "tok", 5)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "syllabus.pdf", files[0].Name)
	assert.Equal(t, "application/pdf", files[0].ContentType)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), files[0].ModifiedAt)

	assert.Equal(t, "notes.docx", files[1].Name, "filename backfills a blank display name")
	assert.True(t, files[1].Locked)
}

func TestListFolderFilesToleratesDenials(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			files, err := client.ListFolderFiles(context.Background(), "tok", 77)
			require.NoError(t, err)
			assert.Empty(t, files)
		})
	}
}

func TestProbeFolderAccess(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		accessible bool
	}{
		{"ok", http.StatusOK, true},
		{"not found", http.StatusNotFound, true},
		{"forbidden", http.StatusForbidden, false},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.RawQuery, "per_page=1")
				w.WriteHeader(tc.status)
			}))

			assert.Equal(t, tc.accessible, client.ProbeFolderAccess(context.Background(), "tok", 31))
		})
	}
}

func TestProbeFolderAccessFailsOpenOnTransportError(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	assert.True(t, client.ProbeFolderAccess(context.Background(), "tok", 31),
		"network failures must not hide folders")
}

func TestDownloadFileCapturesMetadataAtDownloadTime(t *testing.T) {
	var mux http.ServeMux
	client, server := newTestClient(t, &mux)

	mux.HandleFunc("/api/v1/files/11", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"id": 11, "display_name": "syllabus.pdf",
			"content-type": "application/pdf",
			"modified_at": "2026-03-04T08:30:00Z",
			"url": "%s/download/11"}`, server.URL)
	})
	mux.HandleFunc("/download/11", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"),
			"same-host downloads carry the token")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})

	dl, err := client.DownloadFile(context.Background(), "tok", 11)
	require.NoError(t, err)

	assert.Equal(t, "syllabus.pdf", dl.Name)
	assert.Equal(t, []byte("%PDF-1.4 fake"), dl.Data)
	assert.Equal(t, int64(len("%PDF-1.4 fake")), dl.Size)
	assert.Equal(t, time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC), dl.ModifiedAt)
}

func TestDownloadFileEnforcesSizeCap(t *testing.T) {
	var mux http.ServeMux
	server := newServer(t, &mux)

	client := NewClient(ClientParams{
		Config:           config.CanvasConfig{BaseURL: server.URL, PerPage: 100},
		MaxDownloadBytes: 16,
	})

	mux.HandleFunc("/api/v1/files/12", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"id": 12, "display_name": "big.bin", "url": "%s/download/12"}`, server.URL)
	})
	mux.HandleFunc("/download/12", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})

	_, err := client.DownloadFile(context.Background(), "tok", 12)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
