package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// TranscriptionRequest describes one speech-to-text conversion.
type TranscriptionRequest struct {
	Audio          []byte
	Filename       string
	ModelID        string
	LanguageCode   string
	Diarize        bool
	TagAudioEvents bool
}

// Transcription is the relevant slice of the ElevenLabs response.
type Transcription struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

// Client performs HTTP requests against the ElevenLabs speech-to-text API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs an ElevenLabs client.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("elevenlabs api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Transcribe uploads audio and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) (Transcription, error) {
	var out Transcription
	if len(req.Audio) == 0 {
		return out, errors.New("audio payload cannot be empty")
	}
	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return out, fmt.Errorf("build multipart payload: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return out, fmt.Errorf("write audio payload: %w", err)
	}
	fields := map[string]string{
		"model_id":         req.ModelID,
		"diarize":          strconv.FormatBool(req.Diarize),
		"tag_audio_events": strconv.FormatBool(req.TagAudioEvents),
	}
	if req.LanguageCode != "" {
		fields["language_code"] = req.LanguageCode
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return out, fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return out, fmt.Errorf("finalize multipart payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/speech-to-text", &body)
	if err != nil {
		return out, fmt.Errorf("build transcription request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("request transcription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return out, fmt.Errorf("elevenlabs transcription failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode transcription response: %w", err)
	}
	return out, nil
}
