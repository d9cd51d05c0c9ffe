package docproc

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
)

// NoContentMessage is returned when extraction produced nothing worth
// sending to the model.
const NoContentMessage = "No extractable text content found."

const fallbackHeader = "Original content:\n\n"

const summaryPromptTemplate = `You are an expert assistant specialized in summarizing %s content.

Your task is to create a structured, accurate, and concise summary.
Analyze the document carefully and produce the following:

1. **Summary:**
- A clear and concise overview capturing the main ideas and purpose.

2. **Key Points & Facts:**
- Extract the most relevant information, data, arguments, or findings.
- Use bullet points for readability.

3. **Context & Importance:**
- Explain why the content matters or what it is intended for.

4. **Actionable Insights / Conclusions:**
- Highlight any decisions, recommendations, next steps, or implications.

**Guidelines:**
- Preserve essential meaning and details.
- Avoid unnecessary filler or repetition.
- Use simple, easy-to-understand language.
- Maintain neutrality and do not add external information.

---

**Content to summarize:**
%s`

const visionPrompt = `You are an expert vision-analysis assistant.
Analyze the image carefully and provide a structured, detailed report containing:

1. **Extracted Text (OCR):**
- Transcribe all visible text exactly as it appears.
- Preserve line breaks, formatting, and labels when helpful.

2. **Visual Description:**
- Describe all key elements in the image (objects, layout, colors, UI elements, diagrams, charts, people, etc.).
- Explain spatial relationships (e.g., "A banner at the top", "A table with two columns", "Buttons at the bottom").

3. **Key Information & Data:**
- Identify important information the image conveys (numbers, labels, steps, headings, metrics, actions, warnings, etc.).
- If the image is a document, form, screenshot, diagram, or code snippet, summarize its core content.

4. **Context & Purpose:**
- Explain what the image is likely used for (e.g., instructions, a form to fill out, a dashboard, a configuration screen, a diagram explaining X).
- Provide potential intent or user action implied by the image.

5. **Concise Summary:**
- A short, easy-to-understand summary of the most important information from the image.

**Guidelines:**
- Be objective: do not hallucinate nonexistent text or content.
- If a section has no information, state "None found".
- Make the response organized using headings and bullet points.

The image will be provided separately.`

// ChatClient is the slice of the Ollama client the summarizer needs.
type ChatClient interface {
	Chat(ctx context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error)
}

// Outcome is the explicit result of a summarization attempt. Degraded
// outcomes carry usable fallback text; they are never errors and are never
// re-attempted.
type Outcome struct {
	Text     string
	Degraded bool
	Reason   string
}

// Summarizer condenses extracted text (or an image) into a structured
// report through the configured generative models.
type Summarizer struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

// NewSummarizer constructs the adapter.
func NewSummarizer(cfg Config, client ChatClient, logger *slog.Logger) *Summarizer {
	return &Summarizer{cfg: cfg, client: client, logger: logger.With("component", "docproc.summarizer")}
}

// SummarizeText sends extracted text through the text model. Empty or
// whitespace-only input short-circuits without calling the service. A
// service failure of any kind degrades to the truncated original text.
func (s *Summarizer) SummarizeText(ctx context.Context, text, docType string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{Text: NoContentMessage}
	}

	resp, err := s.client.Chat(ctx, ollama.ChatRequest{
		Model: s.cfg.TextModel,
		Messages: []ollama.Message{
			{Role: "user", Content: fmt.Sprintf(summaryPromptTemplate, docType, text)},
		},
		Think:   true,
		Options: &ollama.ChatOptions{Temperature: s.cfg.Temperature},
	})
	if err != nil {
		s.logger.Warn("summarization failed, returning original content",
			"doc_type", docType, "error", err)
		return Outcome{
			Text:     fallbackHeader + truncateText(text, s.cfg.TextExtractLimit),
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	s.logger.Info("summarized document text", "doc_type", docType, "chars", len(text))
	return Outcome{Text: resp.Message.Content}
}

// SummarizeImage sends raw image bytes to the vision model as a base64
// attachment. There is no raw-text payload to fall back on, so a degraded
// outcome carries error-derived text instead.
func (s *Summarizer) SummarizeImage(ctx context.Context, image []byte) Outcome {
	payload := base64.StdEncoding.EncodeToString(image)

	resp, err := s.client.Chat(ctx, ollama.ChatRequest{
		Model: s.cfg.VisionModel,
		Messages: []ollama.Message{
			{Role: "user", Content: visionPrompt, Images: []string{payload}},
		},
		Think:   true,
		Options: &ollama.ChatOptions{Temperature: s.cfg.Temperature},
	})
	if err != nil {
		s.logger.Warn("vision analysis failed", "error", err)
		return Outcome{
			Text:     "Image analysis unavailable: " + err.Error(),
			Degraded: true,
			Reason:   err.Error(),
		}
	}

	s.logger.Info("analyzed image with vision model", "bytes", len(image))
	return Outcome{Text: resp.Message.Content}
}

// truncateText keeps at most limit characters. Counting runes rather than
// bytes keeps the cut on a rune boundary, so truncated multi-byte content
// stays valid UTF-8.
func truncateText(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	seen := 0
	for i := range text {
		if seen == limit {
			return text[:i]
		}
		seen++
	}
	return text
}
