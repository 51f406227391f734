package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/llm"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

type fakeReplier struct {
	reply *llm.Reply
	err   error
	got   llm.ReplyRequest
	calls int
}

func (f *fakeReplier) Reply(_ context.Context, req llm.ReplyRequest) (*llm.Reply, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakeDocumentReader struct {
	docs []models.Document
	err  error
}

func (f *fakeDocumentReader) Documents(context.Context, int64) ([]models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type fakeCourseGetter struct {
	course *models.Course
	err    error
}

func (f *fakeCourseGetter) Get(context.Context, string, int64) (*models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.course, nil
}

var chatNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newChatService(assistant replier, docs *fakeDocumentReader, st store.Store, maxHistory int) *ChatService {
	svc := NewChatService(ChatServiceParams{
		Assistant:  assistant,
		Documents:  docs,
		Courses:    &fakeCourseGetter{course: &models.Course{ID: 7, Name: "Statistics", Nickname: "Stats"}},
		Store:      st,
		MaxHistory: maxHistory,
	})
	svc.now = func() time.Time { return chatNow }
	return svc
}

func TestChatServiceSend_GroundsReplyInDocuments(t *testing.T) {
	assistant := &fakeReplier{reply: &llm.Reply{
		Text:      "The mean is 4.5 [1].",
		Citations: []llm.Citation{{Index: 1, FileName: "notes.pdf"}},
	}}
	docs := &fakeDocumentReader{docs: []models.Document{
		{FileName: "notes.pdf", Text: "lecture notes"},
		{FileName: "slides.pdf", Text: "slides"},
	}}
	st := store.NewMemoryStore(0)
	svc := newChatService(assistant, docs, st, 0)
	ctx := context.Background()

	resp, err := svc.Send(ctx, "token", 7, dto.ChatRequest{Message: "What is the mean?", TutorMode: true})
	require.NoError(t, err)

	assert.Equal(t, "Stats", assistant.got.CourseName)
	assert.True(t, assistant.got.TutorMode)
	assert.Equal(t, "What is the mean?", assistant.got.Message)
	require.Len(t, assistant.got.Documents, 2)
	assert.Equal(t, "notes.pdf", assistant.got.Documents[0].Name)

	assert.Equal(t, models.ChatSenderAssistant, resp.Message.Sender)
	assert.Equal(t, "The mean is 4.5 [1].", resp.Message.Text)
	assert.NotEmpty(t, resp.Message.ID)
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, 1, resp.Citations[0].Index)
	assert.Equal(t, "notes.pdf", resp.Citations[0].FileName)

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ChatSenderUser, history[0].Sender)
	assert.Equal(t, "What is the mean?", history[0].Text)
	assert.Equal(t, chatNow, history[0].SentAt)
	assert.Equal(t, models.ChatSenderAssistant, history[1].Sender)
	assert.NotEqual(t, history[0].ID, history[1].ID)
}

func TestChatServiceSend_DisabledAssistant(t *testing.T) {
	svc := newChatService(nil, &fakeDocumentReader{}, store.NewMemoryStore(0), 0)
	_, err := svc.Send(context.Background(), "token", 7, dto.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssistantDisabled)
}

func TestChatServiceSend_CourseLookupErrorPropagates(t *testing.T) {
	assistant := &fakeReplier{reply: &llm.Reply{Text: "unused"}}
	svc := NewChatService(ChatServiceParams{
		Assistant: assistant,
		Documents: &fakeDocumentReader{},
		Courses:   &fakeCourseGetter{err: appErrors.Clone(appErrors.ErrNotFound, "course not found")},
		Store:     store.NewMemoryStore(0),
	})

	_, err := svc.Send(context.Background(), "token", 99, dto.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, assistant.calls)
}

func TestChatServiceSend_DocumentFailureStillAnswers(t *testing.T) {
	assistant := &fakeReplier{reply: &llm.Reply{Text: "best effort"}}
	docs := &fakeDocumentReader{err: appErrors.ErrInternal}
	svc := newChatService(assistant, docs, store.NewMemoryStore(0), 0)

	resp, err := svc.Send(context.Background(), "token", 7, dto.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "best effort", resp.Message.Text)
	assert.Empty(t, assistant.got.Documents)
}

func TestChatServiceSend_ReplierErrorLeavesHistoryUntouched(t *testing.T) {
	assistant := &fakeReplier{err: appErrors.ErrUpstream}
	st := store.NewMemoryStore(0)
	svc := newChatService(assistant, &fakeDocumentReader{}, st, 0)
	ctx := context.Background()

	_, err := svc.Send(ctx, "token", 7, dto.ChatRequest{Message: "hi"})
	require.Error(t, err)

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatServiceSend_HistoryTrimsToCap(t *testing.T) {
	assistant := &fakeReplier{reply: &llm.Reply{Text: "answer"}}
	st := store.NewMemoryStore(0)
	svc := newChatService(assistant, &fakeDocumentReader{}, st, 4)
	ctx := context.Background()

	for _, message := range []string{"first", "second", "third"} {
		_, err := svc.Send(ctx, "token", 7, dto.ChatRequest{Message: message})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "second", history[0].Text)
	assert.Equal(t, "answer", history[1].Text)
	assert.Equal(t, "third", history[2].Text)
	assert.Equal(t, "answer", history[3].Text)
}

func TestChatServiceSend_QuotaExhaustionPropagates(t *testing.T) {
	assistant := &fakeReplier{reply: &llm.Reply{Text: "answer"}}
	svc := newChatService(assistant, &fakeDocumentReader{}, store.NewMemoryStore(1), 0)

	_, err := svc.Send(context.Background(), "token", 7, dto.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQuotaExceeded.Code, appErrors.FromError(err).Code)
}

func TestChatServiceClear(t *testing.T) {
	assistant := &fakeReplier{reply: &llm.Reply{Text: "answer"}}
	st := store.NewMemoryStore(0)
	svc := newChatService(assistant, &fakeDocumentReader{}, st, 0)
	ctx := context.Background()

	_, err := svc.Send(ctx, "token", 7, dto.ChatRequest{Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, 7))

	history, err := svc.History(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, history)
}
