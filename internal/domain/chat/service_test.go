package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/chatdocs/internal/domain/docproc"
	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
	apperrors "github.com/jmorelli/chatdocs/pkg/errors"
)

type fakeLLM struct {
	mu    sync.Mutex
	calls []ollama.ChatRequest
	fn    func(req ollama.ChatRequest) (ollama.ChatResponse, error)
}

func (f *fakeLLM) Chat(_ context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(req)
	}
	return ollama.ChatResponse{Message: ollama.Message{Role: "assistant", Content: "assistant reply"}, Done: true}, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLLM) lastCall() ollama.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type memoryThreads struct {
	mu       sync.Mutex
	threads  map[uuid.UUID]Thread
	messages map[uuid.UUID][]Message
}

func newMemoryThreads() *memoryThreads {
	return &memoryThreads{
		threads:  make(map[uuid.UUID]Thread),
		messages: make(map[uuid.UUID][]Message),
	}
}

func (s *memoryThreads) EnsureThread(_ context.Context, thread Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[thread.ID]; !ok {
		s.threads[thread.ID] = thread
	}
	return nil
}

func (s *memoryThreads) AppendMessage(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], msg)
	return nil
}

func (s *memoryThreads) ListMessages(_ context.Context, threadID uuid.UUID) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages[threadID]...), nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.entries[key]
	return text, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
	return nil
}

type recordingObjects struct {
	mu   sync.Mutex
	keys []string
}

func (o *recordingObjects) Put(_ context.Context, key string, _ []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.keys = append(o.keys, key)
	return nil
}

type serviceFixture struct {
	svc     *Service
	llm     *fakeLLM
	store   *memoryThreads
	cache   *memoryCache
	objects *recordingObjects
}

func newServiceFixture(llm *fakeLLM) *serviceFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemoryThreads()
	cache := newMemoryCache()
	objects := &recordingObjects{}
	processor := docproc.NewProcessor(docproc.Config{TextModel: "text-model", VisionModel: "vision-model"}, llm, logger)
	cfg := Config{DefaultModel: "default-model", Temperature: 0.2, MaxHistoryTokens: 4000}
	return &serviceFixture{
		svc:     NewService(cfg, store, cache, objects, processor, llm, logger),
		llm:     llm,
		store:   store,
		cache:   cache,
		objects: objects,
	}
}

func TestHandleMessageRejectsEmptyContent(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{Content: "   "})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
	require.Zero(t, f.llm.callCount())
}

func TestHandleMessageRejectsUnknownProfile(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{
		Content: "hello",
		Profile: "nonexistent-model",
	})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
}

func TestHandleMessageSimpleTurn(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	resp, err := f.svc.HandleMessage(context.Background(), MessageRequest{Content: "hello there"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, resp.ThreadID)
	require.Equal(t, "assistant reply", resp.Reply)

	require.Equal(t, "default-model", f.llm.lastCall().Model)

	stored, err := f.store.ListMessages(context.Background(), resp.ThreadID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, RoleUser, stored[0].Role)
	require.Equal(t, "hello there", stored[0].Content)
	require.Equal(t, RoleAssistant, stored[1].Role)
	require.Equal(t, "assistant reply", stored[1].Content)
}

func TestHandleMessageUsesProfileModel(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{
		Content: "hello",
		Profile: "deepseek-v3.1:671b-cloud",
	})
	require.NoError(t, err)
	require.Equal(t, "deepseek-v3.1:671b-cloud", f.llm.lastCall().Model)
}

func TestHandleMessageCarriesHistory(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	first, err := f.svc.HandleMessage(context.Background(), MessageRequest{Content: "first turn"})
	require.NoError(t, err)

	_, err = f.svc.HandleMessage(context.Background(), MessageRequest{
		ThreadID: first.ThreadID,
		Content:  "second turn",
	})
	require.NoError(t, err)

	last := f.llm.lastCall()
	require.Len(t, last.Messages, 3)
	require.Equal(t, "first turn", last.Messages[0].Content)
	require.Equal(t, "assistant reply", last.Messages[1].Content)
	require.Equal(t, "second turn", last.Messages[2].Content)
}

func TestHandleMessageEmptyReplyGetsApology(t *testing.T) {
	llm := &fakeLLM{
		fn: func(ollama.ChatRequest) (ollama.ChatResponse, error) {
			return ollama.ChatResponse{Message: ollama.Message{Content: "   "}}, nil
		},
	}
	f := newServiceFixture(llm)

	resp, err := f.svc.HandleMessage(context.Background(), MessageRequest{Content: "hello"})
	require.NoError(t, err)
	require.Equal(t, emptyReplyMessage, resp.Reply)
}

func TestHandleMessageLLMFailure(t *testing.T) {
	llm := &fakeLLM{
		fn: func(ollama.ChatRequest) (ollama.ChatResponse, error) {
			return ollama.ChatResponse{}, errors.New("connection refused")
		},
	}
	f := newServiceFixture(llm)

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{Content: "hello"})
	require.True(t, apperrors.IsCode(err, CodeLLMFailure))
}

func TestHandleMessageProcessesAttachment(t *testing.T) {
	llm := &fakeLLM{
		fn: func(req ollama.ChatRequest) (ollama.ChatResponse, error) {
			if req.Model == "text-model" {
				return ollama.ChatResponse{Message: ollama.Message{Content: "document summary"}}, nil
			}
			// Conversation call sees the user text plus the extracted block.
			userTurn := req.Messages[len(req.Messages)-1].Content
			require.True(t, strings.HasSuffix(userTurn, "\n\ndocument summary"))
			return ollama.ChatResponse{Message: ollama.Message{Content: "reply"}}, nil
		},
	}
	f := newServiceFixture(llm)

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{
		Content: "what does this say?",
		Attachments: []docproc.File{
			{Name: "notes.txt", Mime: "text/plain", Content: []byte("raw notes")},
		},
	})
	require.NoError(t, err)
	require.Len(t, f.objects.keys, 1)
	require.True(t, strings.HasSuffix(f.objects.keys[0], "/notes.txt"))
}

func TestHandleMessageReusesCachedExtraction(t *testing.T) {
	llm := &fakeLLM{
		fn: func(req ollama.ChatRequest) (ollama.ChatResponse, error) {
			if req.Model == "text-model" {
				return ollama.ChatResponse{Message: ollama.Message{Content: "document summary"}}, nil
			}
			return ollama.ChatResponse{Message: ollama.Message{Content: "reply"}}, nil
		},
	}
	f := newServiceFixture(llm)

	attachment := docproc.File{Name: "notes.txt", Content: []byte("raw notes")}

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{
		Content:     "first",
		Attachments: []docproc.File{attachment},
	})
	require.NoError(t, err)
	firstCalls := f.llm.callCount()
	require.Equal(t, 2, firstCalls) // summarize + conversation

	_, err = f.svc.HandleMessage(context.Background(), MessageRequest{
		Content:     "again",
		Attachments: []docproc.File{attachment},
	})
	require.NoError(t, err)
	// Cache hit skips the summarization call.
	require.Equal(t, firstCalls+1, f.llm.callCount())
}

func TestHandleMessageSkipsUnsupportedAttachments(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	_, err := f.svc.HandleMessage(context.Background(), MessageRequest{
		Content: "hello",
		Attachments: []docproc.File{
			{Name: "binary.exe", Content: []byte{1, 2, 3}},
		},
	})
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
}

func TestListMessagesRequiresThreadID(t *testing.T) {
	f := newServiceFixture(&fakeLLM{})

	_, err := f.svc.ListMessages(context.Background(), uuid.Nil)
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
}

func TestModelForProfile(t *testing.T) {
	model, ok := ModelForProfile("gpt-oss:120b-cloud")
	require.True(t, ok)
	require.Equal(t, "gpt-oss:120b-cloud", model)

	_, ok = ModelForProfile("made-up")
	require.False(t, ok)
}

func TestCatalogShape(t *testing.T) {
	profiles := Catalog()
	require.Len(t, profiles, 7)
	for _, p := range profiles {
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.MarkdownDescription)
		require.Len(t, p.Starters, 3)
	}
}
