package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmorelli/chatdocs/pkg/metrics"
)

const defaultBaseURL = "http://localhost:11434"

// Message mirrors the Ollama chat message structure. Images carry
// base64-encoded attachments for vision models.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatOptions carries per-request sampling options.
type ChatOptions struct {
	Temperature float64 `json:"temperature"`
}

// ChatRequest is the payload sent to the Ollama chat API.
type ChatRequest struct {
	Model    string       `json:"model"`
	Messages []Message    `json:"messages"`
	Think    bool         `json:"think,omitempty"`
	Stream   bool         `json:"stream"`
	Options  *ChatOptions `json:"options,omitempty"`
}

// ChatResponse captures the non-streaming chat response.
type ChatResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

// Usage converts the evaluation counters into the shared usage shape.
func (r ChatResponse) Usage() metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     r.PromptEvalCount,
		CompletionTokens: r.EvalCount,
		TotalTokens:      r.PromptEvalCount + r.EvalCount,
	}
}

// Client performs HTTP requests against an Ollama server. The API key is
// optional: local servers accept unauthenticated requests.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs an Ollama client.
func NewClient(apiKey, baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Chat performs a synchronous chat call. Streaming is always disabled.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	req.Stream = false

	var out ChatResponse
	payload, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return out, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("request chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return out, fmt.Errorf("ollama chat failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode chat response: %w", err)
	}
	return out, nil
}
