package service

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// UploadService manages user-supplied study files. Uploads live in one
// bucket per course plus a semester-wide bucket, are immutable once stored,
// and only disappear through an explicit delete.
type UploadService struct {
	store     store.Store
	extractor textExtractor
	documents documentRebuilder
	logger    *zap.Logger
	maxSize   int64
	now       func() time.Time
}

// UploadServiceParams groups constructor dependencies.
type UploadServiceParams struct {
	Store        store.Store
	Extractor    textExtractor
	Documents    documentRebuilder
	Logger       *zap.Logger
	MaxSizeBytes int64
}

// NewUploadService constructs an UploadService with sane defaults.
func NewUploadService(params UploadServiceParams) *UploadService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSize := params.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = 15 * 1024 * 1024
	}
	return &UploadService{
		store:     params.Store,
		extractor: params.Extractor,
		documents: params.Documents,
		logger:    logger,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// List returns one bucket's uploads as payload-free views. A nil courseID
// selects the semester-wide bucket.
func (s *UploadService) List(ctx context.Context, courseID *int64) ([]dto.UploadView, error) {
	uploads, err := s.loadBucket(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.views(uploads), nil
}

// Create validates and stores a new upload, then refreshes the owning
// course's document corpus so chat picks it up without waiting for a sync.
func (s *UploadService) Create(ctx context.Context, req dto.UploadRequest) (*dto.UploadView, error) {
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "data must be base64 encoded")
	}
	if int64(len(data)) > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit")
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	upload := models.UploadedFile{
		ID:          uuid.NewString(),
		CourseID:    req.CourseID,
		Name:        req.Name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        req.Data,
		UploadedAt:  s.now().UTC(),
	}

	uploads, err := s.loadBucket(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	uploads = append(uploads, upload)
	if err := s.store.Set(ctx, store.KeyUploads(req.CourseID), uploads); err != nil {
		return nil, err
	}

	s.rebuildDocuments(ctx, req.CourseID)

	view := s.view(upload)
	return &view, nil
}

// Delete removes an upload by id, wherever it lives. The semester bucket is
// checked first, then every course bucket.
func (s *UploadService) Delete(ctx context.Context, uploadID string) error {
	removed, err := s.deleteFromBucket(ctx, nil, uploadID)
	if err != nil {
		return err
	}
	if removed {
		return nil
	}

	keys, err := s.store.Keys(ctx, "course:")
	if err != nil {
		return err
	}
	for _, key := range keys {
		courseID, ok := courseIDFromUploadKey(key)
		if !ok {
			continue
		}
		removed, err := s.deleteFromBucket(ctx, &courseID, uploadID)
		if err != nil {
			return err
		}
		if removed {
			s.rebuildDocuments(ctx, &courseID)
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "upload not found")
}

func (s *UploadService) deleteFromBucket(ctx context.Context, courseID *int64, uploadID string) (bool, error) {
	uploads, err := s.loadBucket(ctx, courseID)
	if err != nil {
		return false, err
	}

	kept := uploads[:0]
	found := false
	for _, upload := range uploads {
		if upload.ID == uploadID {
			found = true
			continue
		}
		kept = append(kept, upload)
	}
	if !found {
		return false, nil
	}

	key := store.KeyUploads(courseID)
	if len(kept) == 0 {
		return true, s.store.Remove(ctx, key)
	}
	return true, s.store.Set(ctx, key, kept)
}

func (s *UploadService) loadBucket(ctx context.Context, courseID *int64) ([]models.UploadedFile, error) {
	var uploads []models.UploadedFile
	if err := s.store.Get(ctx, store.KeyUploads(courseID), &uploads); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return nil, nil
		}
		return nil, err
	}
	return uploads, nil
}

// rebuildDocuments refreshes a course corpus after a bucket change.
// Semester-wide uploads reach each course at its next rebuild instead.
func (s *UploadService) rebuildDocuments(ctx context.Context, courseID *int64) {
	if s.documents == nil || courseID == nil {
		return
	}
	if _, err := s.documents.Rebuild(ctx, *courseID); err != nil {
		s.logger.Warn("document rebuild after upload change failed",
			zap.Int64("course_id", *courseID), zap.Error(err))
	}
}

func (s *UploadService) views(uploads []models.UploadedFile) []dto.UploadView {
	views := make([]dto.UploadView, 0, len(uploads))
	for _, upload := range uploads {
		views = append(views, s.view(upload))
	}
	return views
}

func (s *UploadService) view(upload models.UploadedFile) dto.UploadView {
	return dto.UploadView{
		ID:          upload.ID,
		CourseID:    upload.CourseID,
		Name:        upload.Name,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Extractable: s.extractor.Supported(upload.Name, upload.ContentType),
		UploadedAt:  upload.UploadedAt,
	}
}

// courseIDFromUploadKey recognises per-course upload bucket keys.
func courseIDFromUploadKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, "course:")
	if !ok {
		return 0, false
	}
	idPart, ok := strings.CutSuffix(rest, ":uploads")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
