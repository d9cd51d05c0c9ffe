package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
	"github.com/jmorelli/chatdocs/internal/domain/docproc"
	"github.com/jmorelli/chatdocs/internal/domain/transcribe"
	"github.com/jmorelli/chatdocs/internal/infra/config"
	"github.com/jmorelli/chatdocs/internal/infra/extractcache"
	"github.com/jmorelli/chatdocs/internal/infra/history"
	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
	"github.com/jmorelli/chatdocs/internal/infra/uploadstore"
)

type stubLLM struct {
	fn func(req ollama.ChatRequest) (ollama.ChatResponse, error)
}

func (s *stubLLM) Chat(_ context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error) {
	if s.fn != nil {
		return s.fn(req)
	}
	return ollama.ChatResponse{Message: ollama.Message{Role: "assistant", Content: "stub reply"}, Done: true}, nil
}

func newRouterUnderTest(t *testing.T, llm *stubLLM) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.HTTP.Address = ":0"
	cfg.HTTP.ReadTimeout = time.Second
	cfg.HTTP.WriteTimeout = time.Second

	processor := docproc.NewProcessor(docproc.Config{TextModel: "text-model", VisionModel: "vision-model"}, llm, logger)
	chatSvc := chat.NewService(
		chat.Config{DefaultModel: "default-model", MaxHistoryTokens: 4000},
		history.NewMemoryStore(),
		extractcache.NewMemoryCache(time.Hour),
		uploadstore.NewNoopStore(),
		processor,
		llm,
		logger,
	)
	transcribeSvc := transcribe.NewService(transcribe.Config{}, nil, logger)

	server := NewRouter(cfg, NewHandler(chatSvc, transcribeSvc, logger), NewDocumentHandler(processor, logger), logger)
	return server.Handler
}

func performJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorBody(t *testing.T, body []byte) map[string]map[string]string {
	t.Helper()
	var out map[string]map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestRouter_ListProfiles(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	recorder := performJSON(t, handler, http.MethodGet, "/api/v1/profiles", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Profiles []chat.Profile `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Profiles, 7)
	require.NotEmpty(t, body.Profiles[0].Starters)
}

func TestRouter_SendMessage(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	recorder := performJSON(t, handler, http.MethodPost, "/api/v1/messages", `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body messageResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "stub reply", body.Reply)
	require.NotEmpty(t, body.ThreadID)
}

func TestRouter_SendMessageEmptyContent(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	recorder := performJSON(t, handler, http.MethodPost, "/api/v1/messages", `{"content":"  "}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_SendMessageBadThreadID(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	recorder := performJSON(t, handler, http.MethodPost, "/api/v1/messages", `{"content":"hi","thread_id":"not-a-uuid"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_ThreadTranscript(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	recorder := performJSON(t, handler, http.MethodPost, "/api/v1/messages", `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	var sent messageResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &sent))

	recorder = performJSON(t, handler, http.MethodGet, "/api/v1/threads/"+sent.ThreadID+"/messages", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		ThreadID string          `json:"thread_id"`
		Messages []storedMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, sent.ThreadID, body.ThreadID)
	require.Len(t, body.Messages, 2)
	require.Equal(t, "user", body.Messages[0].Role)
	require.Equal(t, "assistant", body.Messages[1].Role)
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
		if strings.HasSuffix(name, ".txt") {
			header.Set("Content-Type", "text/plain")
		}
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestRouter_ProcessDocument(t *testing.T) {
	llm := &stubLLM{
		fn: func(req ollama.ChatRequest) (ollama.ChatResponse, error) {
			return ollama.ChatResponse{Message: ollama.Message{Content: "doc summary"}}, nil
		},
	}
	handler := newRouterUnderTest(t, llm)

	body, contentType := multipartBody(t, "file", map[string][]byte{"notes.txt": []byte("raw text")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	require.Equal(t, "notes.txt", out["filename"])
	require.Equal(t, "doc summary", out["text"])
}

func TestRouter_ProcessDocumentUnsupported(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	body, contentType := multipartBody(t, "file", map[string][]byte{"binary.exe": {1, 2, 3}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_ProcessBatch(t *testing.T) {
	llm := &stubLLM{
		fn: func(req ollama.ChatRequest) (ollama.ChatResponse, error) {
			return ollama.ChatResponse{Message: ollama.Message{Content: "ok"}}, nil
		},
	}
	handler := newRouterUnderTest(t, llm)

	body, contentType := multipartBody(t, "files", map[string][]byte{
		"a.txt":   []byte("alpha"),
		"bad.exe": []byte("beta"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/batch?concurrent=true", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var out struct {
		Results map[string]string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	require.Len(t, out.Results, 2)
	require.Equal(t, "ok", out.Results["a.txt"])
	require.Contains(t, out.Results["bad.exe"], "Error processing bad.exe")
}

func TestRouter_TranscribeUnavailable(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions", bytes.NewReader(make([]byte, 24000*2*2)))
	req.Header.Set("Content-Type", "application/octet-stream")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "stt_unavailable", errBody["error"]["code"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	handler := newRouterUnderTest(t, &stubLLM{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/messages", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
