package http

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
	"github.com/jmorelli/chatdocs/internal/domain/docproc"
	"github.com/jmorelli/chatdocs/internal/domain/transcribe"
	apperrors "github.com/jmorelli/chatdocs/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	chatSvc       *chat.Service
	transcribeSvc *transcribe.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc *chat.Service, transcribeSvc *transcribe.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc:       chatSvc,
		transcribeSvc: transcribeSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// ListProfiles returns the selectable model profiles.
func (h *Handler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": chat.Catalog()})
}

type messageForm struct {
	ThreadID string `form:"thread_id" json:"thread_id"`
	Profile  string `form:"profile" json:"profile"`
	Content  string `form:"content" json:"content"`
}

type messageResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
	Usage    struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// SendMessage handles one conversation turn. The request may be JSON, or
// multipart form data when attachments ride along.
func (h *Handler) SendMessage(c *gin.Context) {
	var (
		form        messageForm
		attachments []docproc.File
	)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&form); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		files, err := formFiles(c, "files")
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		attachments = files
	} else {
		if err := c.ShouldBindJSON(&form); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}

	var threadID uuid.UUID
	if form.ThreadID != "" {
		parsed, err := uuid.Parse(form.ThreadID)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "thread_id must be a UUID", err))
			return
		}
		threadID = parsed
	}

	resp, err := h.chatSvc.HandleMessage(c.Request.Context(), chat.MessageRequest{
		ThreadID:    threadID,
		Profile:     form.Profile,
		Content:     form.Content,
		Attachments: attachments,
	})
	if err != nil {
		abortWithError(c, mapChatError(err))
		return
	}

	var out messageResponse
	out.ThreadID = resp.ThreadID.String()
	out.Reply = resp.Reply
	out.Usage.PromptTokens = resp.Usage.PromptTokens
	out.Usage.CompletionTokens = resp.Usage.CompletionTokens
	out.Usage.TotalTokens = resp.Usage.TotalTokens
	c.JSON(http.StatusOK, out)
}

type storedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ListThreadMessages returns a thread's transcript so a resumed session can
// rebuild its history.
func (h *Handler) ListThreadMessages(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "thread id must be a UUID", err))
		return
	}

	messages, err := h.chatSvc.ListMessages(c.Request.Context(), threadID)
	if err != nil {
		abortWithError(c, mapChatError(err))
		return
	}

	out := make([]storedMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, storedMessage{
			ID:        msg.ID.String(),
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": threadID.String(), "messages": out})
}

// Transcribe converts an uploaded audio clip into text. The audio rides in
// as raw PCM16 bytes, either as the request body or a multipart field.
func (h *Handler) Transcribe(c *gin.Context) {
	var pcm []byte
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("audio")
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "audio field is required", err))
			return
		}
		data, err := readMultipartFile(fh)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		pcm = data
	} else {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		pcm = data
	}

	text, err := h.transcribeSvc.Transcribe(c.Request.Context(), pcm)
	if err != nil {
		abortWithError(c, mapTranscribeError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func mapChatError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "chat_failed"
	switch {
	case apperrors.IsCode(err, chat.CodeInvalidInput),
		apperrors.IsCode(err, docproc.CodeInvalidInput),
		apperrors.IsCode(err, docproc.CodeUnsupportedExtension),
		apperrors.IsCode(err, docproc.CodeContentTypeMismatch),
		apperrors.IsCode(err, docproc.CodeUnsafeFilename),
		apperrors.IsCode(err, docproc.CodeContentUnavailable):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, docproc.CodeFileTooLarge):
		status = http.StatusRequestEntityTooLarge
		code = "file_too_large"
	case apperrors.IsCode(err, docproc.CodeExtractionFailed):
		status = http.StatusUnprocessableEntity
		code = "extraction_failed"
	case apperrors.IsCode(err, chat.CodeLLMFailure):
		status = http.StatusBadGateway
		code = "llm_failure"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func mapTranscribeError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "transcription_failed"
	switch {
	case apperrors.IsCode(err, transcribe.CodeInvalidAudio),
		apperrors.IsCode(err, transcribe.CodeAudioTooShort):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, transcribe.CodeEmptyTranscript):
		status = http.StatusUnprocessableEntity
		code = "empty_transcript"
	case apperrors.IsCode(err, transcribe.CodeSTTUnavailable):
		status = http.StatusServiceUnavailable
		code = "stt_unavailable"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func formFiles(c *gin.Context, field string) ([]docproc.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	headers := form.File[field]
	files := make([]docproc.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readMultipartFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, docproc.File{
			Name:    fh.Filename,
			Mime:    fh.Header.Get("Content-Type"),
			Content: data,
		})
	}
	return files, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
