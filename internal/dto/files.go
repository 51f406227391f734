package dto

import (
	"time"

	"github.com/danielpj17/junior-ledger/internal/models"
)

// FileTreeResponse is the course file area: root files, expandable folders
// and the folders the access probe ruled out.
type FileTreeResponse struct {
	CourseID  int64        `json:"courseId"`
	RootFiles []FileView   `json:"rootFiles"`
	Folders   []FolderView `json:"folders"`
}

// FolderView is one folder with its files, or a restricted marker instead.
type FolderView struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	FullName   string     `json:"fullName"`
	FilesCount int        `json:"filesCount"`
	Restricted bool       `json:"restricted"`
	Files      []FileView `json:"files"`
}

// FileView is file metadata without the payload, annotated with cache state.
type FileView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	ModifiedAt  *time.Time `json:"modifiedAt,omitempty"`
	Cached      bool       `json:"cached"`
	Extractable bool       `json:"extractable"`
}

// SyncReport summarises one reconciliation pass over a course's files.
type SyncReport struct {
	CourseID          int64     `json:"courseId"`
	Candidates        int       `json:"candidates"`
	Downloaded        int       `json:"downloaded"`
	Reused            int       `json:"reused"`
	Failed            int       `json:"failed"`
	SkippedOversize   int       `json:"skippedOversize"`
	RestrictedFolders []int64   `json:"restrictedFolderIds"`
	DocumentsBuilt    int       `json:"documentsBuilt"`
	SyncedAt          time.Time `json:"syncedAt"`
}

// DocumentView is extracted text metadata; the text itself stays server-side
// for assistant context unless explicitly requested.
type DocumentView struct {
	CanvasID       *int64     `json:"canvasId,omitempty"`
	FileName       string     `json:"fileName"`
	Characters     int        `json:"characters"`
	FileModifiedAt *time.Time `json:"fileModifiedAt,omitempty"`
	ExtractedAt    time.Time  `json:"extractedAt"`
}

// NewDocumentView strips the payload off a document.
func NewDocumentView(doc models.Document) DocumentView {
	return DocumentView{
		CanvasID:       doc.CanvasID,
		FileName:       doc.FileName,
		Characters:     len(doc.Text),
		FileModifiedAt: doc.FileModifiedAt,
		ExtractedAt:    doc.ExtractedAt,
	}
}
