package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmorelli/chatdocs/internal/infra/stt/elevenlabs"
	apperrors "github.com/jmorelli/chatdocs/pkg/errors"
)

const (
	CodeAudioTooShort   = "audio_too_short"
	CodeSTTUnavailable  = "stt_unavailable"
	CodeEmptyTranscript = "empty_transcript"
	CodeInvalidAudio    = "invalid_audio"

	// Clips of this duration or shorter never carry speech worth
	// transcribing and are rejected before any network call.
	minAudioSeconds = 1.71
)

// Config tunes the speech-to-text pipeline.
type Config struct {
	ModelID        string
	LanguageCode   string
	SampleRate     int
	Channels       int
	Diarize        bool
	TagAudioEvents bool
}

func (c Config) withDefaults() Config {
	if c.ModelID == "" {
		c.ModelID = "scribe_v1"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 24000
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	return c
}

// STTClient is the slice of the ElevenLabs client the service needs.
type STTClient interface {
	Transcribe(ctx context.Context, req elevenlabs.TranscriptionRequest) (elevenlabs.Transcription, error)
}

// Service converts raw PCM16 audio into text.
type Service struct {
	cfg    Config
	client STTClient
	logger *slog.Logger
}

// NewService constructs the transcription service. A nil client is allowed
// and reported per call, so the rest of the app runs without STT
// credentials.
func NewService(cfg Config, client STTClient, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg.withDefaults(),
		client: client,
		logger: logger.With("component", "transcribe.service"),
	}
}

// Transcribe wraps the PCM samples in a WAV container and sends them to the
// speech-to-text backend. Clips below the minimum duration are rejected
// before any network call.
func (s *Service) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", apperrors.Wrap(CodeInvalidAudio, "audio payload cannot be empty", nil)
	}
	if s.client == nil {
		return "", apperrors.Wrap(CodeSTTUnavailable, "speech-to-text is not configured", nil)
	}

	seconds := s.duration(pcm)
	if seconds <= minAudioSeconds {
		return "", apperrors.Wrap(CodeAudioTooShort,
			fmt.Sprintf("audio duration %.2fs must exceed %.2fs", seconds, minAudioSeconds), nil)
	}

	wav := encodeWAV(pcm, s.cfg.SampleRate, s.cfg.Channels)
	result, err := s.client.Transcribe(ctx, elevenlabs.TranscriptionRequest{
		Audio:          wav,
		Filename:       "audio.wav",
		ModelID:        s.cfg.ModelID,
		LanguageCode:   s.cfg.LanguageCode,
		Diarize:        s.cfg.Diarize,
		TagAudioEvents: s.cfg.TagAudioEvents,
	})
	if err != nil {
		return "", apperrors.Wrap(CodeSTTUnavailable, "transcription request failed", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", apperrors.Wrap(CodeEmptyTranscript, "no speech recognized in audio", nil)
	}

	s.logger.Info("transcribed audio",
		"seconds", fmt.Sprintf("%.2f", seconds), "language", result.LanguageCode, "chars", len(text))
	return text, nil
}

// duration derives clip length from the PCM16 byte count.
func (s *Service) duration(pcm []byte) float64 {
	bytesPerSecond := float64(s.cfg.SampleRate * s.cfg.Channels * 2)
	return float64(len(pcm)) / bytesPerSecond
}
