package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jmorelli/chatdocs/internal/domain/docproc"
)

// DocumentHandler exposes the ingestion pipeline directly, without a
// conversation wrapped around it.
type DocumentHandler struct {
	processor *docproc.Processor
	logger    *slog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(processor *docproc.Processor, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		processor: processor,
		logger:    logger.With("component", "http.document_handler"),
	}
}

// Process runs one uploaded file through the pipeline and returns the
// extracted (or degraded) text.
func (h *DocumentHandler) Process(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file field is required", err))
		return
	}
	data, err := readMultipartFile(fh)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	text, err := h.processor.Process(c.Request.Context(), fh.Filename, data, fh.Header.Get("Content-Type"))
	if err != nil {
		abortWithError(c, mapChatError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": fh.Filename, "text": text})
}

// ProcessBatch runs every uploaded file through the pipeline. Failures are
// reported inline per file, never as a request-level error. The concurrent
// query flag switches to the fan-out path.
func (h *DocumentHandler) ProcessBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "files field is required", nil))
		return
	}

	files := make(map[string][]byte, len(headers))
	for _, fh := range headers {
		data, err := readMultipartFile(fh)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		files[fh.Filename] = data
	}

	concurrent, _ := strconv.ParseBool(c.Query("concurrent"))

	var results map[string]string
	if concurrent {
		results = h.processor.ProcessBatchConcurrent(c.Request.Context(), files)
	} else {
		results = h.processor.ProcessBatch(c.Request.Context(), files)
	}

	h.logger.Info("processed document batch", "files", len(files), "concurrent", concurrent)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
