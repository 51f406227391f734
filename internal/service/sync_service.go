package service

import (
	"context"
	"encoding/base64"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/canvas"
	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	"github.com/danielpj17/junior-ledger/pkg/config"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// defaultFolderName is the name Canvas gives every course's root folder.
// It is never probed or expanded as a subfolder.
const defaultFolderName = "course files"

type fileGateway interface {
	ListFiles(ctx context.Context, token string, courseID int64) ([]models.CourseFile, error)
	ListFolders(ctx context.Context, token string, courseID int64) ([]models.Folder, error)
	ListFolderFiles(ctx context.Context, token string, folderID int64) ([]models.CourseFile, error)
	ProbeFolderAccess(ctx context.Context, token string, folderID int64) bool
	DownloadFile(ctx context.Context, token string, fileID int64) (*canvas.FileDownload, error)
}

type textExtractor interface {
	Supported(name, contentType string) bool
}

type documentRebuilder interface {
	Rebuild(ctx context.Context, courseID int64) (int, error)
}

// SyncService reconciles a course's Canvas file area against the local
// cache: it probes folder access, plans the minimal download set by
// modification time, fetches in bounded batches and rebuilds the extracted
// document corpus afterwards.
type SyncService struct {
	gateway   fileGateway
	extractor textExtractor
	documents documentRebuilder
	store     store.Store
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       config.SyncConfig
	now       func() time.Time
}

// SyncServiceParams groups constructor dependencies.
type SyncServiceParams struct {
	Gateway   fileGateway
	Extractor textExtractor
	Documents documentRebuilder
	Store     store.Store
	Metrics   *MetricsService
	Logger    *zap.Logger
	Config    config.SyncConfig
}

// NewSyncService constructs a SyncService with sane defaults.
func NewSyncService(params SyncServiceParams) *SyncService {
	cfg := params.Config
	if cfg.DownloadBatchSize <= 0 {
		cfg.DownloadBatchSize = 10
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = 5
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 20 * 1024 * 1024
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		gateway:   params.Gateway,
		extractor: params.Extractor,
		documents: params.Documents,
		store:     params.Store,
		metrics:   params.Metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Sync runs one reconciliation pass over a course's files. A file is
// re-downloaded only when the remote modified_at is strictly newer than the
// cached copy; everything else is reused without touching the network.
func (s *SyncService) Sync(ctx context.Context, token string, courseID int64) (*dto.SyncReport, error) {
	files, restricted, err := s.collectFiles(ctx, token, courseID)
	if err != nil {
		return nil, err
	}

	candidates, skippedOversize := s.eligibleFiles(files)

	cache := s.loadCache(ctx, courseID)
	toFetch, reused := planDownloads(cache, candidates)

	downloaded, failed, oversize := s.downloadBatch(ctx, token, courseID, toFetch)
	skippedOversize += oversize

	next := make(map[int64]models.CachedFile, len(reused)+len(downloaded))
	for _, file := range reused {
		next[file.ID] = cache[file.ID]
	}
	for _, entry := range downloaded {
		next[entry.CanvasID] = entry
	}
	if err := s.store.Set(ctx, store.KeyFileCache(courseID), next); err != nil {
		return nil, err
	}

	s.persistRestricted(ctx, courseID, restricted)

	built := 0
	if s.documents != nil {
		built, err = s.documents.Rebuild(ctx, courseID)
		if err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrQuotaExceeded.Code {
				return nil, err
			}
			s.logger.Warn("document rebuild failed after sync",
				zap.Int64("course_id", courseID), zap.Error(err))
		}
	}

	return &dto.SyncReport{
		CourseID:          courseID,
		Candidates:        len(candidates),
		Downloaded:        len(downloaded),
		Reused:            len(reused),
		Failed:            failed,
		SkippedOversize:   skippedOversize,
		RestrictedFolders: restricted,
		DocumentsBuilt:    built,
		SyncedAt:          s.now().UTC(),
	}, nil
}

// FileTree returns the course file area for display: root files, folders
// with their contents, and restricted markers where the probe was denied.
func (s *SyncService) FileTree(ctx context.Context, token string, courseID int64) (*dto.FileTreeResponse, error) {
	rootFiles, err := s.gateway.ListFiles(ctx, token, courseID)
	if err != nil {
		return nil, err
	}

	folders, err := s.listFoldersTolerant(ctx, token, courseID)
	if err != nil {
		return nil, err
	}
	candidates := folderCandidates(folders)
	restrictedSet := s.probeFolders(ctx, token, candidates)

	cache := s.loadCache(ctx, courseID)

	folderViews := make([]dto.FolderView, 0, len(candidates))
	restricted := make([]int64, 0)
	for _, folder := range candidates {
		view := dto.FolderView{
			ID:         folder.ID,
			Name:       folder.Name,
			FullName:   folder.FullName,
			FilesCount: folder.FilesCount,
		}
		if restrictedSet[folder.ID] {
			view.Restricted = true
			folderViews = append(folderViews, view)
			restricted = append(restricted, folder.ID)
			continue
		}

		contents, err := s.gateway.ListFolderFiles(ctx, token, folder.ID)
		if err != nil {
			s.logger.Warn("folder expansion failed",
				zap.Int64("folder_id", folder.ID), zap.Error(err))
			folderViews = append(folderViews, view)
			continue
		}
		if len(contents) == 0 && folder.FilesCount > 0 {
			// the folder claims files it will not show; treat as denied
			view.Restricted = true
			folderViews = append(folderViews, view)
			restricted = append(restricted, folder.ID)
			continue
		}
		view.Files = s.fileViews(contents, cache)
		folderViews = append(folderViews, view)
	}
	sort.Slice(folderViews, func(i, j int) bool { return folderViews[i].FullName < folderViews[j].FullName })
	sort.Slice(restricted, func(i, j int) bool { return restricted[i] < restricted[j] })

	s.persistRestricted(ctx, courseID, restricted)

	return &dto.FileTreeResponse{
		CourseID:  courseID,
		RootFiles: s.fileViews(rootFilesOnly(rootFiles, folders), cache),
		Folders:   folderViews,
	}, nil
}

// FileContent returns one cached file's metadata and decoded bytes.
func (s *SyncService) FileContent(ctx context.Context, courseID, fileID int64) (*models.CachedFile, []byte, error) {
	cache := s.loadCache(ctx, courseID)
	entry, ok := cache[fileID]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file is not in the local cache; run a sync first")
	}
	data, err := base64.StdEncoding.DecodeString(entry.Data)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			"cached file payload is unreadable")
	}
	return &entry, data, nil
}

// collectFiles gathers the full candidate listing for a sync pass: root
// files plus the contents of every accessible folder, deduplicated by id.
func (s *SyncService) collectFiles(ctx context.Context, token string, courseID int64) ([]models.CourseFile, []int64, error) {
	files, err := s.gateway.ListFiles(ctx, token, courseID)
	if err != nil {
		return nil, nil, err
	}

	folders, err := s.listFoldersTolerant(ctx, token, courseID)
	if err != nil {
		return nil, nil, err
	}

	candidates := folderCandidates(folders)
	restrictedSet := s.probeFolders(ctx, token, candidates)

	merged := make([]models.CourseFile, 0, len(files))
	seen := make(map[int64]struct{}, len(files))
	for _, file := range files {
		if _, dup := seen[file.ID]; dup {
			continue
		}
		seen[file.ID] = struct{}{}
		merged = append(merged, file)
	}

	restricted := make([]int64, 0)
	for _, folder := range candidates {
		if restrictedSet[folder.ID] {
			restricted = append(restricted, folder.ID)
			continue
		}
		contents, err := s.gateway.ListFolderFiles(ctx, token, folder.ID)
		if err != nil {
			s.logger.Warn("folder listing failed, contributing no files",
				zap.Int64("folder_id", folder.ID), zap.Error(err))
			continue
		}
		if len(contents) == 0 && folder.FilesCount > 0 {
			restricted = append(restricted, folder.ID)
			continue
		}
		for _, file := range contents {
			if _, dup := seen[file.ID]; dup {
				continue
			}
			seen[file.ID] = struct{}{}
			merged = append(merged, file)
		}
	}
	sort.Slice(restricted, func(i, j int) bool { return restricted[i] < restricted[j] })

	return merged, restricted, nil
}

// listFoldersTolerant degrades a failed folder listing to an empty one
// unless the token itself was rejected.
func (s *SyncService) listFoldersTolerant(ctx context.Context, token string, courseID int64) ([]models.Folder, error) {
	folders, err := s.gateway.ListFolders(ctx, token, courseID)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrInvalidToken.Code {
			return nil, err
		}
		s.logger.Warn("folder listing failed, continuing with root files only",
			zap.Int64("course_id", courseID), zap.Error(err))
		return nil, nil
	}
	return folders, nil
}

// probeFolders classifies candidate folders in parallel. Only an explicit
// denial restricts; everything else stays accessible.
func (s *SyncService) probeFolders(ctx context.Context, token string, candidates []models.Folder) map[int64]bool {
	restricted := make(map[int64]bool, len(candidates))
	if len(candidates) == 0 {
		return restricted
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.ProbeConcurrency)

	for _, folder := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(folderID int64) {
			defer wg.Done()
			defer func() { <-sem }()
			if !s.gateway.ProbeFolderAccess(ctx, token, folderID) {
				mu.Lock()
				restricted[folderID] = true
				mu.Unlock()
			}
		}(folder.ID)
	}
	wg.Wait()
	return restricted
}

// downloadBatch fetches the planned files in fixed-size batches: goroutines
// fan out inside a batch, batches run strictly in sequence. One failed file
// never aborts its siblings.
func (s *SyncService) downloadBatch(ctx context.Context, token string, courseID int64, plan []models.CourseFile) ([]models.CachedFile, int, int) {
	var (
		mu         sync.Mutex
		downloaded []models.CachedFile
		failed     int
		oversize   int
	)

	for start := 0; start < len(plan); start += s.cfg.DownloadBatchSize {
		end := start + s.cfg.DownloadBatchSize
		if end > len(plan) {
			end = len(plan)
		}

		var wg sync.WaitGroup
		for _, file := range plan[start:end] {
			wg.Add(1)
			go func(file models.CourseFile) {
				defer wg.Done()
				result, err := s.gateway.DownloadFile(ctx, token, file.ID)
				if err != nil {
					mu.Lock()
					if appErrors.FromError(err).Code == appErrors.ErrValidation.Code {
						oversize++
					} else {
						failed++
					}
					mu.Unlock()
					s.logger.Warn("file download failed",
						zap.Int64("file_id", file.ID), zap.String("name", file.Name), zap.Error(err))
					return
				}

				entry := models.CachedFile{
					CanvasID:    file.ID,
					CourseID:    courseID,
					Name:        result.Name,
					ContentType: result.ContentType,
					Size:        result.Size,
					Data:        base64.StdEncoding.EncodeToString(result.Data),
					ModifiedAt:  result.ModifiedAt,
					CachedAt:    s.now().UTC(),
				}
				if entry.Name == "" {
					entry.Name = file.Name
				}
				s.metrics.ObserveDownload(result.Size)

				mu.Lock()
				downloaded = append(downloaded, entry)
				mu.Unlock()
			}(file)
		}
		wg.Wait()
	}
	return downloaded, failed, oversize
}

// eligibleFiles narrows a listing to the extraction pipeline's candidates:
// visible, unlocked, supported and within the cacheable size limit.
func (s *SyncService) eligibleFiles(files []models.CourseFile) ([]models.CourseFile, int) {
	candidates := make([]models.CourseFile, 0, len(files))
	skippedOversize := 0
	for _, file := range files {
		if file.Locked || file.Hidden {
			continue
		}
		if !s.extractor.Supported(file.Name, file.ContentType) {
			continue
		}
		if file.Size > s.cfg.MaxFileSizeBytes {
			skippedOversize++
			continue
		}
		candidates = append(candidates, file)
	}
	return candidates, skippedOversize
}

func (s *SyncService) loadCache(ctx context.Context, courseID int64) map[int64]models.CachedFile {
	cache := map[int64]models.CachedFile{}
	if err := s.store.Get(ctx, store.KeyFileCache(courseID), &cache); err != nil {
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("loading file cache failed, treating as empty",
				zap.Int64("course_id", courseID), zap.Error(err))
		}
		return map[int64]models.CachedFile{}
	}
	return cache
}

func (s *SyncService) persistRestricted(ctx context.Context, courseID int64, folderIDs []int64) {
	record := models.RestrictedFolders{
		CourseID:  courseID,
		FolderIDs: folderIDs,
		ProbedAt:  s.now().UTC(),
	}
	if err := s.store.Set(ctx, store.KeyRestrictedFolders(courseID), record); err != nil {
		s.logger.Warn("persisting restricted folders failed",
			zap.Int64("course_id", courseID), zap.Error(err))
	}
}

func (s *SyncService) fileViews(files []models.CourseFile, cache map[int64]models.CachedFile) []dto.FileView {
	views := make([]dto.FileView, 0, len(files))
	for _, file := range files {
		if file.Hidden || file.Locked {
			continue
		}
		view := dto.FileView{
			ID:          file.ID,
			Name:        file.Name,
			ContentType: file.ContentType,
			Size:        file.Size,
			Extractable: s.extractor.Supported(file.Name, file.ContentType),
		}
		if !file.ModifiedAt.IsZero() {
			modifiedAt := file.ModifiedAt
			view.ModifiedAt = &modifiedAt
		}
		_, view.Cached = cache[file.ID]
		views = append(views, view)
	}
	return views
}

// planDownloads splits candidates into files needing a download and files
// whose cached copy is current. Absent means download; a remote modified_at
// strictly newer than the cached stamp means download; equal or older reuses.
func planDownloads(cache map[int64]models.CachedFile, candidates []models.CourseFile) (toFetch, reused []models.CourseFile) {
	for _, file := range candidates {
		entry, ok := cache[file.ID]
		if !ok || file.ModifiedAt.After(entry.ModifiedAt) {
			toFetch = append(toFetch, file)
			continue
		}
		reused = append(reused, file)
	}
	return toFetch, reused
}

// folderCandidates filters a course's folders to the ones worth probing and
// expanding: visible, not the default root folder, and claiming at least
// one file.
func folderCandidates(folders []models.Folder) []models.Folder {
	candidates := make([]models.Folder, 0, len(folders))
	for _, folder := range folders {
		if folder.Hidden {
			continue
		}
		if strings.EqualFold(folder.Name, defaultFolderName) {
			continue
		}
		if folder.FilesCount == 0 {
			continue
		}
		candidates = append(candidates, folder)
	}
	return candidates
}

// rootFilesOnly keeps the files that live directly in the course's default
// folder. Files inside hidden folders stay hidden with their folder.
func rootFilesOnly(files []models.CourseFile, folders []models.Folder) []models.CourseFile {
	var rootID int64
	subfolders := make(map[int64]struct{}, len(folders))
	for _, folder := range folders {
		if strings.EqualFold(folder.Name, defaultFolderName) {
			rootID = folder.ID
			continue
		}
		subfolders[folder.ID] = struct{}{}
	}

	root := make([]models.CourseFile, 0, len(files))
	for _, file := range files {
		if rootID != 0 && file.FolderID == rootID {
			root = append(root, file)
			continue
		}
		if _, inSub := subfolders[file.FolderID]; !inSub && rootID == 0 {
			root = append(root, file)
		}
	}
	return root
}
