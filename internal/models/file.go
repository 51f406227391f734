package models

import "time"

// CourseFile is a file as listed by Canvas, before any caching decision.
type CourseFile struct {
	ID          int64     `json:"id"`
	FolderID    int64     `json:"folder_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	ModifiedAt  time.Time `json:"modified_at"`
	Locked      bool      `json:"locked"`
	Hidden      bool      `json:"hidden"`
}

// Folder is a Canvas course folder. FilesCount comes from folder metadata
// and may disagree with what an expansion actually returns when the folder
// is access restricted.
type Folder struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	FilesCount int    `json:"files_count"`
	Hidden     bool   `json:"hidden"`
	Locked     bool   `json:"locked"`
}

// CachedFile is a downloaded Canvas file held in the store. ModifiedAt is
// captured from file metadata at download time, not from the listing that
// triggered the download.
type CachedFile struct {
	CanvasID    int64     `json:"canvas_id"`
	CourseID    int64     `json:"course_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Data        string    `json:"data"`
	ModifiedAt  time.Time `json:"modified_at"`
	CachedAt    time.Time `json:"cached_at"`
}

// UploadedFile is a user-supplied study material. CourseID nil means the
// file is semester-wide and visible to every course context.
type UploadedFile struct {
	ID          string    `json:"id"`
	CourseID    *int64    `json:"course_id,omitempty"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Data        string    `json:"data"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Document is extracted plain text ready for assistant context. CanvasID is
// set for texts sourced from cached Canvas files; uploads are identified by
// FileName alone and carry no FileModifiedAt.
type Document struct {
	CanvasID       *int64     `json:"canvas_id,omitempty"`
	FileName       string     `json:"file_name"`
	Text           string     `json:"text"`
	FileModifiedAt *time.Time `json:"file_modified_at,omitempty"`
	ExtractedAt    time.Time  `json:"extracted_at"`
}

// RestrictedFolders records which folders of a course answered the access
// probe with a denial, so later syncs skip them without re-probing failures.
type RestrictedFolders struct {
	CourseID  int64     `json:"course_id"`
	FolderIDs []int64   `json:"folder_ids"`
	ProbedAt  time.Time `json:"probed_at"`
}
