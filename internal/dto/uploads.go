package dto

import "time"

// UploadRequest adds a study file. Data is base64; CourseID nil files the
// upload under the semester-wide bucket.
type UploadRequest struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"contentType"`
	Data        string `json:"data" binding:"required"`
	CourseID    *int64 `json:"courseId"`
}

// UploadView is upload metadata without the payload.
type UploadView struct {
	ID          string    `json:"id"`
	CourseID    *int64    `json:"courseId,omitempty"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Extractable bool      `json:"extractable"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
