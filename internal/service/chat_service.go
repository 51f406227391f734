package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/llm"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// ErrAssistantDisabled answers chat requests when no assistant is wired up.
var ErrAssistantDisabled = appErrors.New("ASSISTANT_DISABLED", http.StatusServiceUnavailable,
	"the assistant is disabled; set ENABLE_ASSISTANT=true and provide ASSISTANT_API_KEY")

type replier interface {
	Reply(ctx context.Context, req llm.ReplyRequest) (*llm.Reply, error)
}

type documentReader interface {
	Documents(ctx context.Context, courseID int64) ([]models.Document, error)
}

type courseGetter interface {
	Get(ctx context.Context, token string, courseID int64) (*models.Course, error)
}

// ChatService runs per-course assistant conversations. Each turn is a
// self-contained completion grounded in the course's extracted documents;
// the persisted history exists for display, not for prompt replay.
type ChatService struct {
	assistant  replier
	documents  documentReader
	courses    courseGetter
	store      store.Store
	logger     *zap.Logger
	maxHistory int
	now        func() time.Time
}

// ChatServiceParams groups constructor dependencies. A nil Assistant keeps
// the endpoints up but answers with a configuration hint.
type ChatServiceParams struct {
	Assistant  replier
	Documents  documentReader
	Courses    courseGetter
	Store      store.Store
	Logger     *zap.Logger
	MaxHistory int
}

// NewChatService constructs a ChatService with sane defaults.
func NewChatService(params ChatServiceParams) *ChatService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxHistory := params.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &ChatService{
		assistant:  params.Assistant,
		documents:  params.Documents,
		courses:    params.Courses,
		store:      params.Store,
		logger:     logger,
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// Send runs one conversation turn and persists both sides of it.
func (s *ChatService) Send(ctx context.Context, token string, courseID int64, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if s.assistant == nil {
		return nil, ErrAssistantDisabled
	}

	course, err := s.courses.Get(ctx, token, courseID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.Documents(ctx, courseID)
	if err != nil {
		s.logger.Warn("loading documents for chat failed, answering without context",
			zap.Int64("course_id", courseID), zap.Error(err))
	}
	contextDocs := make([]llm.ContextDocument, 0, len(docs))
	for _, doc := range docs {
		contextDocs = append(contextDocs, llm.ContextDocument{Name: doc.FileName, Text: doc.Text})
	}

	userMessage := models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.ChatSenderUser,
		Text:   req.Message,
		SentAt: s.now().UTC(),
	}

	reply, err := s.assistant.Reply(ctx, llm.ReplyRequest{
		CourseName: course.DisplayName(),
		TutorMode:  req.TutorMode,
		Documents:  contextDocs,
		Message:    req.Message,
	})
	if err != nil {
		return nil, err
	}

	assistantMessage := models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.ChatSenderAssistant,
		Text:   reply.Text,
		SentAt: s.now().UTC(),
	}

	if err := s.appendHistory(ctx, courseID, userMessage, assistantMessage); err != nil {
		return nil, err
	}

	citations := make([]dto.Citation, 0, len(reply.Citations))
	for _, citation := range reply.Citations {
		citations = append(citations, dto.Citation{Index: citation.Index, FileName: citation.FileName})
	}

	return &dto.ChatResponse{Message: assistantMessage, Citations: citations}, nil
}

// History returns the persisted conversation for a course.
func (s *ChatService) History(ctx context.Context, courseID int64) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	if err := s.store.Get(ctx, store.KeyChat(courseID), &history); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return []models.ChatMessage{}, nil
		}
		return nil, err
	}
	return history, nil
}

// Clear erases a course's conversation.
func (s *ChatService) Clear(ctx context.Context, courseID int64) error {
	return s.store.Remove(ctx, store.KeyChat(courseID))
}

// appendHistory writes both turns, trimming to the retention cap. Quota
// exhaustion propagates so the caller can tell the user to free space; any
// other write failure only costs the transcript, not the reply.
func (s *ChatService) appendHistory(ctx context.Context, courseID int64, messages ...models.ChatMessage) error {
	history, err := s.History(ctx, courseID)
	if err != nil {
		s.logger.Warn("loading chat history failed, starting fresh",
			zap.Int64("course_id", courseID), zap.Error(err))
		history = nil
	}

	history = append(history, messages...)
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if err := s.store.Set(ctx, store.KeyChat(courseID), history); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrQuotaExceeded.Code {
			return err
		}
		s.logger.Warn("persisting chat history failed",
			zap.Int64("course_id", courseID), zap.Error(err))
	}
	return nil
}
