package docproc

// Error codes surfaced through pkg/errors. Validation and input codes are
// fatal for the affected file; summarization failures never produce an
// error, only a degraded result.
const (
	CodeUnsupportedExtension = "unsupported_extension"
	CodeContentTypeMismatch  = "content_type_mismatch"
	CodeFileTooLarge         = "file_too_large"
	CodeUnsafeFilename       = "unsafe_filename"
	CodeInvalidInput         = "invalid_input"
	CodeContentUnavailable   = "content_unavailable"
	CodeExtractionFailed     = "extraction_failed"
)
