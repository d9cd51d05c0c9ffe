package docproc

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/jmorelli/chatdocs/pkg/errors"
)

// FileInfo is the read-only record derived from a candidate file. It is
// computed once per request and never mutated.
type FileInfo struct {
	Filename    string
	Extension   string
	Size        int64
	ContentType string
}

func fileInfoFor(filename string, size int64, contentType string) FileInfo {
	return FileInfo{
		Filename:    filename,
		Extension:   strings.ToLower(filepath.Ext(filename)),
		Size:        size,
		ContentType: contentType,
	}
}

// validateFile checks a candidate against the configured whitelist. It is
// pure: no extraction work happens here, and any single failure
// short-circuits the pipeline for that file.
func validateFile(cfg Config, filename string, size int64, contentType string) (FileInfo, error) {
	info := fileInfoFor(filename, size, contentType)

	if _, ok := cfg.AllowedExtensions[info.Extension]; !ok {
		return FileInfo{}, apperrors.Wrap(CodeUnsupportedExtension,
			fmt.Sprintf("unsupported file extension: %s", info.Extension), nil)
	}

	if expected := cfg.AllowedContentTypes[info.Extension]; len(expected) > 0 && info.ContentType != "" {
		if _, ok := expected[info.ContentType]; !ok {
			return FileInfo{}, apperrors.Wrap(CodeContentTypeMismatch,
				fmt.Sprintf("declared content type %q does not match extension %s", info.ContentType, info.Extension), nil)
		}
	}

	if info.Size > cfg.MaxFileSize {
		return FileInfo{}, apperrors.Wrap(CodeFileTooLarge,
			fmt.Sprintf("file size (%d bytes) exceeds limit (%d bytes)", info.Size, cfg.MaxFileSize), nil)
	}

	if strings.Contains(filename, "..") || strings.HasPrefix(filename, "/") {
		return FileInfo{}, apperrors.Wrap(CodeUnsafeFilename,
			"invalid filename: potential path traversal detected", nil)
	}

	return info, nil
}
