package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jmorelli/chatdocs/internal/domain/docproc"
	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
	apperrors "github.com/jmorelli/chatdocs/pkg/errors"
	"github.com/jmorelli/chatdocs/pkg/metrics"
	"github.com/jmorelli/chatdocs/pkg/util"
)

const (
	CodeInvalidInput = "invalid_input"
	CodeLLMFailure   = "llm_failure"

	emptyReplyMessage = "I apologize, but I couldn't generate a response. Please try again."
)

// Config tunes the conversation service.
type Config struct {
	DefaultModel     string
	Temperature      float64
	MaxHistoryTokens int
}

// ChatClient is the slice of the LLM client the service needs.
type ChatClient interface {
	Chat(ctx context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error)
}

// MessageRequest is one inbound user turn. A zero ThreadID opens a new
// thread.
type MessageRequest struct {
	ThreadID    uuid.UUID
	Profile     string
	Content     string
	Attachments []docproc.File
}

// MessageResponse is the assistant's turn plus accounting data.
type MessageResponse struct {
	ThreadID uuid.UUID
	Reply    string
	Usage    metrics.TokenUsage
}

// Service coordinates one conversation turn: attachment processing, history
// assembly, the LLM round trip, and persistence.
type Service struct {
	cfg       Config
	store     ThreadStore
	cache     ExtractCache
	objects   ObjectStore
	processor *docproc.Processor
	llm       ChatClient
	logger    *slog.Logger
}

// NewService constructs the conversation service.
func NewService(cfg Config, store ThreadStore, cache ExtractCache, objects ObjectStore,
	processor *docproc.Processor, llm ChatClient, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		objects:   objects,
		processor: processor,
		llm:       llm,
		logger:    logger.With("component", "chat.service"),
	}
}

// HandleMessage runs one full conversation turn and returns the assistant
// reply. Attachment extraction failures are fatal for the turn; LLM
// failures map to a typed error the transport layer renders.
func (s *Service) HandleMessage(ctx context.Context, req MessageRequest) (MessageResponse, error) {
	var out MessageResponse

	content := strings.TrimSpace(req.Content)
	if content == "" && len(req.Attachments) == 0 {
		return out, apperrors.Wrap(CodeInvalidInput, "message content cannot be empty", nil)
	}

	model := s.cfg.DefaultModel
	if req.Profile != "" {
		resolved, ok := ModelForProfile(req.Profile)
		if !ok {
			return out, apperrors.Wrap(CodeInvalidInput,
				fmt.Sprintf("unknown chat profile %q", req.Profile), nil)
		}
		model = resolved
	}

	threadID := req.ThreadID
	if threadID == uuid.Nil {
		threadID = uuid.New()
	}
	if err := s.store.EnsureThread(ctx, Thread{ID: threadID, Profile: req.Profile, CreatedAt: util.NowUTC()}); err != nil {
		s.logger.Warn("failed to persist thread", "thread_id", threadID, "error", err)
	}

	if len(req.Attachments) > 0 {
		extracted, err := s.processAttachments(ctx, req.Attachments)
		if err != nil {
			return out, err
		}
		if content == "" {
			content = extracted
		} else {
			content = content + "\n\n" + extracted
		}
	}

	history := s.loadHistory(ctx, threadID)
	messages := append(history, ollama.Message{Role: string(RoleUser), Content: content})
	messages = trimToBudget(messages, s.cfg.MaxHistoryTokens)

	resp, err := s.llm.Chat(ctx, ollama.ChatRequest{
		Model:    model,
		Messages: messages,
		Options:  &ollama.ChatOptions{Temperature: s.cfg.Temperature},
	})
	if err != nil {
		return out, apperrors.Wrap(CodeLLMFailure, "chat completion failed", err)
	}

	reply := strings.TrimSpace(resp.Message.Content)
	if reply == "" {
		reply = emptyReplyMessage
	}

	s.persistTurn(ctx, threadID, content, reply)

	usage := resp.Usage()
	s.logger.Info("completed conversation turn",
		"thread_id", threadID, "model", model,
		"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	out.ThreadID = threadID
	out.Reply = reply
	out.Usage = usage
	return out, nil
}

// ListMessages returns the stored turns of a thread in chronological order.
// Resumed sessions rebuild their UI transcript from this.
func (s *Service) ListMessages(ctx context.Context, threadID uuid.UUID) ([]Message, error) {
	if threadID == uuid.Nil {
		return nil, apperrors.Wrap(CodeInvalidInput, "thread id is required", nil)
	}
	return s.store.ListMessages(ctx, threadID)
}

// processAttachments extracts text from the first supported attachment.
// The raw upload is archived and the processed text memoized by content
// digest so re-sending the same file skips the model round trip.
func (s *Service) processAttachments(ctx context.Context, attachments []docproc.File) (string, error) {
	var file *docproc.File
	for i := range attachments {
		if s.processor.Supported(attachments[i].Name) {
			file = &attachments[i]
			break
		}
	}
	if file == nil {
		return "", apperrors.Wrap(CodeInvalidInput, "no valid files to process", nil)
	}

	data, err := docproc.ResolveContent(*file)
	if err != nil {
		return "", err
	}

	digest := sha256.Sum256(data)
	key := hex.EncodeToString(digest[:])

	if cached, ok, cacheErr := s.cache.Get(ctx, key); cacheErr != nil {
		s.logger.Warn("extract cache lookup failed", "error", cacheErr)
	} else if ok {
		s.logger.Info("reusing cached extraction", "filename", file.Name, "digest", key[:12])
		return cached, nil
	}

	if err := s.objects.Put(ctx, key+"/"+file.Name, data, file.Mime); err != nil {
		s.logger.Warn("failed to archive upload", "filename", file.Name, "error", err)
	}

	text, err := s.processor.Process(ctx, file.Name, data, file.Mime)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, text); err != nil {
		s.logger.Warn("extract cache write failed", "error", err)
	}
	return text, nil
}

func (s *Service) loadHistory(ctx context.Context, threadID uuid.UUID) []ollama.Message {
	stored, err := s.store.ListMessages(ctx, threadID)
	if err != nil {
		s.logger.Warn("failed to load history, continuing without it",
			"thread_id", threadID, "error", err)
		return nil
	}
	messages := make([]ollama.Message, 0, len(stored))
	for _, msg := range stored {
		messages = append(messages, ollama.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return messages
}

func (s *Service) persistTurn(ctx context.Context, threadID uuid.UUID, userContent, reply string) {
	now := util.NowUTC()
	turns := []Message{
		{ID: uuid.New(), ThreadID: threadID, Role: RoleUser, Content: userContent, CreatedAt: now},
		{ID: uuid.New(), ThreadID: threadID, Role: RoleAssistant, Content: reply, CreatedAt: now},
	}
	for _, msg := range turns {
		if err := s.store.AppendMessage(ctx, msg); err != nil {
			s.logger.Warn("failed to persist message",
				"thread_id", threadID, "role", msg.Role, "error", err)
		}
	}
}
