package service

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

type documentExtractor interface {
	Supported(name, contentType string) bool
	Extract(name, contentType string, data []byte) (string, error)
}

// DocumentService maintains each course's extracted-text corpus: the
// assistant's retrieval context. Uploads are immutable, so their text is
// reused whenever present; a Canvas file's text is valid only while its
// recorded modification time matches the cached file exactly, any drift in
// either direction forces re-extraction.
type DocumentService struct {
	store     store.Store
	extractor documentExtractor
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// DocumentServiceParams groups constructor dependencies.
type DocumentServiceParams struct {
	Store     store.Store
	Extractor documentExtractor
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(params DocumentServiceParams) *DocumentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		store:     params.Store,
		extractor: params.Extractor,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Documents returns the course corpus in citation order. A course that was
// never synced has an empty corpus, not an error.
func (s *DocumentService) Documents(ctx context.Context, courseID int64) ([]models.Document, error) {
	var docs []models.Document
	if err := s.store.Get(ctx, store.KeyDocuments(courseID), &docs); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return nil, nil
		}
		return nil, err
	}
	return docs, nil
}

// Rebuild reconciles the corpus against the current cache and uploads:
// still-valid texts are kept in their existing order, invalidated or new
// sources are re-extracted and appended, and entries whose source vanished
// drop out by not being rewritten. Returns the corpus size.
func (s *DocumentService) Rebuild(ctx context.Context, courseID int64) (int, error) {
	existing, err := s.Documents(ctx, courseID)
	if err != nil {
		s.logger.Warn("loading document corpus failed, rebuilding from scratch",
			zap.Int64("course_id", courseID), zap.Error(err))
		existing = nil
	}

	uploads := s.loadUploads(ctx, courseID)
	cache := s.loadFileCache(ctx, courseID)

	uploadDocs := make(map[string]models.Document)
	canvasDocs := make(map[int64]models.Document)
	for _, doc := range existing {
		if doc.CanvasID == nil {
			uploadDocs[doc.FileName] = doc
			continue
		}
		canvasDocs[*doc.CanvasID] = doc
	}

	kept := make([]models.Document, 0, len(existing))
	keptKeys := make(map[string]struct{}, len(existing))
	var pendingUploads []models.UploadedFile
	var pendingFiles []models.CachedFile

	for _, upload := range uploads {
		if !s.extractor.Supported(upload.Name, upload.ContentType) {
			continue
		}
		if _, ok := uploadDocs[upload.Name]; ok {
			keptKeys["u:"+upload.Name] = struct{}{}
			continue
		}
		pendingUploads = append(pendingUploads, upload)
	}

	for _, entry := range sortedCacheEntries(cache) {
		doc, ok := canvasDocs[entry.CanvasID]
		if ok && doc.FileModifiedAt != nil && doc.FileModifiedAt.Equal(entry.ModifiedAt) {
			keptKeys["c:"+keyForID(entry.CanvasID)] = struct{}{}
			continue
		}
		pendingFiles = append(pendingFiles, entry)
	}

	// keep survivors in their stored order so citation numbers stay stable
	for _, doc := range existing {
		if doc.CanvasID == nil {
			if _, ok := keptKeys["u:"+doc.FileName]; ok {
				kept = append(kept, doc)
			}
			continue
		}
		if _, ok := keptKeys["c:"+keyForID(*doc.CanvasID)]; ok {
			kept = append(kept, doc)
		}
	}

	for _, upload := range pendingUploads {
		doc, ok := s.extractUpload(upload)
		if ok {
			kept = append(kept, doc)
		}
	}
	for _, entry := range pendingFiles {
		doc, ok := s.extractCachedFile(entry)
		if ok {
			kept = append(kept, doc)
		}
	}

	if err := s.store.Set(ctx, store.KeyDocuments(courseID), kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (s *DocumentService) extractUpload(upload models.UploadedFile) (models.Document, bool) {
	text, ok := s.extractText(upload.Name, upload.ContentType, upload.Data)
	if !ok {
		return models.Document{}, false
	}
	return models.Document{
		FileName:    upload.Name,
		Text:        text,
		ExtractedAt: s.now().UTC(),
	}, true
}

func (s *DocumentService) extractCachedFile(entry models.CachedFile) (models.Document, bool) {
	text, ok := s.extractText(entry.Name, entry.ContentType, entry.Data)
	if !ok {
		return models.Document{}, false
	}
	canvasID := entry.CanvasID
	modifiedAt := entry.ModifiedAt
	return models.Document{
		CanvasID:       &canvasID,
		FileName:       entry.Name,
		Text:           text,
		FileModifiedAt: &modifiedAt,
		ExtractedAt:    s.now().UTC(),
	}, true
}

// extractText decodes and extracts one source. Failures and empty results
// skip the document; they never abort the rebuild.
func (s *DocumentService) extractText(name, contentType, encoded string) (string, bool) {
	format := formatLabel(name)

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		s.metrics.ObserveExtraction(format, false)
		s.logger.Warn("stored payload is not valid base64", zap.String("name", name), zap.Error(err))
		return "", false
	}

	text, err := s.extractor.Extract(name, contentType, data)
	if err != nil {
		s.metrics.ObserveExtraction(format, false)
		s.logger.Warn("text extraction failed", zap.String("name", name), zap.Error(err))
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		s.metrics.ObserveExtraction(format, false)
		s.logger.Warn("text extraction produced nothing", zap.String("name", name))
		return "", false
	}

	s.metrics.ObserveExtraction(format, true)
	return text, true
}

func (s *DocumentService) loadUploads(ctx context.Context, courseID int64) []models.UploadedFile {
	var uploads []models.UploadedFile
	if err := s.store.Get(ctx, store.KeyUploads(&courseID), &uploads); err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("loading course uploads failed", zap.Int64("course_id", courseID), zap.Error(err))
		}
	}

	var semester []models.UploadedFile
	if err := s.store.Get(ctx, store.KeySemesterUploads, &semester); err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("loading semester uploads failed", zap.Error(err))
		}
	}
	return append(uploads, semester...)
}

func (s *DocumentService) loadFileCache(ctx context.Context, courseID int64) map[int64]models.CachedFile {
	cache := map[int64]models.CachedFile{}
	if err := s.store.Get(ctx, store.KeyFileCache(courseID), &cache); err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("loading file cache failed", zap.Int64("course_id", courseID), zap.Error(err))
		}
		return map[int64]models.CachedFile{}
	}
	return cache
}

// sortedCacheEntries fixes an iteration order for the cache map so rebuilds
// are deterministic.
func sortedCacheEntries(cache map[int64]models.CachedFile) []models.CachedFile {
	entries := make([]models.CachedFile, 0, len(cache))
	for _, entry := range cache {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].CanvasID < entries[j].CanvasID
	})
	return entries
}

func keyForID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatLabel(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
