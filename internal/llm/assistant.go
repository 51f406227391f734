// Package llm wraps the chat completion backend behind a course-assistant
// API: prompt assembly, context clipping, citation extraction and the
// translation of provider errors into actionable messages.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/danielpj17/junior-ledger/pkg/config"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// CompletionAPI is the slice of the OpenAI-compatible client the assistant
// uses. Gemini's compatibility endpoint satisfies it through the same
// client, pointed at a different BaseURL.
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ContextDocument is one numbered source the assistant may cite.
type ContextDocument struct {
	Name string
	Text string
}

// ReplyRequest carries everything the assistant needs for one turn. Each
// request is self-contained: the system prompt plus the user's message, with
// no prior turns replayed.
type ReplyRequest struct {
	CourseName string
	TutorMode  bool
	Documents  []ContextDocument
	Message    string
}

// Citation maps a bracketed number in the reply back to its source file.
type Citation struct {
	Index    int    `json:"index"`
	FileName string `json:"file_name"`
}

// Reply is the assistant's answer with resolved citations.
type Reply struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// AssistantParams configures the assistant. API overrides the client built
// from Config, which tests use to substitute a fake.
type AssistantParams struct {
	Config config.AssistantConfig
	Logger *zap.Logger
	API    CompletionAPI
}

// Assistant answers course questions grounded in extracted documents.
type Assistant struct {
	api         CompletionAPI
	model       string
	maxTokens   int
	temperature float32
	maxContext  int
	logger      *zap.Logger
}

// NewAssistant builds an assistant from configuration.
func NewAssistant(p AssistantParams) *Assistant {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	api := p.API
	if api == nil {
		clientCfg := openai.DefaultConfig(p.Config.APIKey)
		if p.Config.BaseURL != "" {
			clientCfg.BaseURL = p.Config.BaseURL
		}
		clientCfg.HTTPClient = &http.Client{Timeout: p.Config.RequestTimeout}
		api = openai.NewClientWithConfig(clientCfg)
	}

	maxContext := p.Config.MaxContextChars
	if maxContext <= 0 {
		maxContext = 12000
	}

	return &Assistant{
		api:         api,
		model:       p.Config.Model,
		maxTokens:   p.Config.MaxTokens,
		temperature: float32(p.Config.Temperature),
		maxContext:  maxContext,
		logger:      logger,
	}
}

// Reply sends one self-contained completion request and resolves citations
// against the supplied documents.
func (a *Assistant) Reply(ctx context.Context, req ReplyRequest) (*Reply, error) {
	completion, err := a.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: a.systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Message},
		},
	})
	if err != nil {
		a.logger.Warn("assistant request failed", zap.Error(err))
		return nil, rewriteProviderError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "the assistant returned an empty reply; try again")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	return &Reply{
		Text:      text,
		Citations: extractCitations(text, req.Documents),
	}, nil
}

// systemPrompt assembles persona, tutor-mode directive and the numbered
// course materials, clipped to the context budget.
func (a *Assistant) systemPrompt(req ReplyRequest) string {
	var sb strings.Builder

	course := req.CourseName
	if course == "" {
		course = "the student's current course"
	}
	fmt.Fprintf(&sb, "You are a study assistant for %s.\n", course)
	sb.WriteString("Ground every answer in the numbered course materials below and cite them inline with bracketed numbers, e.g. [2]. ")
	sb.WriteString("If the materials do not cover the question, say so explicitly.\n")

	if req.TutorMode {
		sb.WriteString("Tutor mode is on: do not hand over final answers. Lead the student there with guiding questions, hints and partial steps.\n")
	}

	if len(req.Documents) == 0 {
		sb.WriteString("\nNo course materials are available for this conversation.\n")
		return sb.String()
	}

	sb.WriteString("\nCourse materials:\n")
	remaining := a.maxContext
	for i, doc := range req.Documents {
		if remaining <= 0 {
			break
		}
		text := doc.Text
		if len(text) > remaining {
			text = text[:remaining] + "\n[truncated]"
		}
		remaining -= len(text)
		fmt.Fprintf(&sb, "\n[%d] %s\n%s\n", i+1, doc.Name, text)
	}
	return sb.String()
}

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// extractCitations resolves bracketed numbers against the document list,
// dropping out-of-range references and duplicates.
func extractCitations(text string, docs []ContextDocument) []Citation {
	if len(docs) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var citations []Citation
	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		index, err := strconv.Atoi(match[1])
		if err != nil || index < 1 || index > len(docs) || seen[index] {
			continue
		}
		seen[index] = true
		citations = append(citations, Citation{Index: index, FileName: docs[index-1].Name})
	}
	sort.Slice(citations, func(i, j int) bool { return citations[i].Index < citations[j].Index })
	return citations
}

// rewriteProviderError turns raw provider failures into messages a student
// can act on.
func rewriteProviderError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		return appErrors.Clone(appErrors.ErrUpstream,
			"the assistant is over its usage quota; wait a minute and retry, or check the API key's plan")
	case strings.Contains(msg, "api key") || strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "permission"):
		return appErrors.Clone(appErrors.ErrUpstream,
			"the assistant API key was rejected; update ASSISTANT_API_KEY")
	case strings.Contains(msg, "model") || strings.Contains(msg, "404"):
		return appErrors.Clone(appErrors.ErrUpstream,
			"the configured assistant model is unavailable; check ASSISTANT_MODEL")
	default:
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"the assistant did not answer; try again")
	}
}
