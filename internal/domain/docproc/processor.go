package docproc

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	apperrors "github.com/jmorelli/chatdocs/pkg/errors"
)

// File is the caller-boundary view of an upload: inline bytes, or a
// readable path when the host framework spooled the content to disk.
type File struct {
	Name    string
	Mime    string
	Content []byte
	Path    string
}

// Processor validates a file, dispatches it to the extractor for its
// format, and returns the summarized (or degraded) text. It keeps no
// state across requests.
type Processor struct {
	cfg        Config
	summarizer *Summarizer
	logger     *slog.Logger
}

// NewProcessor constructs a Processor. Zero config fields fall back to the
// shipped defaults.
func NewProcessor(cfg Config, client ChatClient, logger *slog.Logger) *Processor {
	cfg = cfg.withDefaults()
	return &Processor{
		cfg:        cfg,
		summarizer: NewSummarizer(cfg, client, logger),
		logger:     logger.With("component", "docproc.processor"),
	}
}

// Config exposes the immutable processing configuration.
func (p *Processor) Config() Config {
	return p.cfg
}

// Supported reports whether a filename carries an extension the pipeline
// accepts.
func (p *Processor) Supported(filename string) bool {
	info := fileInfoFor(filename, 0, "")
	_, ok := p.cfg.AllowedExtensions[info.Extension]
	return ok
}

// Process runs the full pipeline for one file. Validation failures are
// returned as typed errors; summarization failures surface only as
// degraded text, never as errors.
func (p *Processor) Process(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if filename == "" || len(data) == 0 {
		return "", apperrors.Wrap(CodeInvalidInput, "filename and file bytes are required", nil)
	}

	info, err := validateFile(p.cfg, filename, int64(len(data)), contentType)
	if err != nil {
		return "", err
	}

	format, ok := formatForExtension(info.Extension)
	if !ok {
		// Unreachable while the validator and format table agree.
		return "", apperrors.Wrap(CodeUnsupportedExtension,
			fmt.Sprintf("no extractor registered for %s", info.Extension), nil)
	}

	p.logger.Info("processing file",
		"filename", info.Filename, "format", format.String(), "size", info.Size)

	if format == FormatImage {
		return p.processImage(ctx, data), nil
	}

	text, err := format.extractText(data)
	if err != nil {
		return "", apperrors.Wrap(CodeExtractionFailed,
			fmt.Sprintf("failed to process %s", format), err)
	}

	outcome := p.summarizer.SummarizeText(ctx, truncateText(text, p.cfg.TextExtractLimit), format.String())
	if outcome.Degraded {
		p.logger.Warn("returning degraded result", "filename", info.Filename, "reason", outcome.Reason)
	}
	return outcome.Text, nil
}

// processImage sends the image through the vision model and condenses the
// resulting report with the text model. A degraded vision outcome is
// returned as-is: degraded output is never re-summarized.
func (p *Processor) processImage(ctx context.Context, data []byte) string {
	vision := p.summarizer.SummarizeImage(ctx, data)
	if vision.Degraded {
		return vision.Text
	}
	outcome := p.summarizer.SummarizeText(ctx, vision.Text, "image")
	return outcome.Text
}

// ResolveContent returns the file bytes, reading from Path when the
// content was spooled to disk.
func ResolveContent(f File) ([]byte, error) {
	data := f.Content
	if len(data) == 0 && f.Path != "" {
		read, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, apperrors.Wrap(CodeContentUnavailable,
				fmt.Sprintf("failed to read file content from path %s", f.Path), err)
		}
		data = read
	}
	if len(data) == 0 {
		return nil, apperrors.Wrap(CodeContentUnavailable,
			"file content is not available as bytes or a valid path", nil)
	}
	return data, nil
}

// ProcessFile resolves the caller-boundary file shape and processes it.
func (p *Processor) ProcessFile(ctx context.Context, f File) (string, error) {
	data, err := ResolveContent(f)
	if err != nil {
		return "", err
	}
	return p.Process(ctx, f.Name, data, f.Mime)
}

// processContained runs one batch entry. A panic escaping the pipeline
// must surface as that file's error, never abort its siblings; in the
// concurrent path an unrecovered panic would kill the whole process.
func (p *Processor) processContained(ctx context.Context, filename string, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Wrap(CodeExtractionFailed,
				fmt.Sprintf("panic while processing %s", filename), fmt.Errorf("%v", r))
		}
	}()
	return p.Process(ctx, filename, data, "")
}

// ProcessBatch processes each file independently and sequentially. Every
// entry is fully resolved before it is recorded; a failed file contributes
// an error string and never aborts its siblings.
func (p *Processor) ProcessBatch(ctx context.Context, files map[string][]byte) map[string]string {
	results := make(map[string]string, len(files))
	for filename, data := range files {
		text, err := p.processContained(ctx, filename, data)
		if err != nil {
			results[filename] = fmt.Sprintf("Error processing %s: %v", filename, err)
			continue
		}
		results[filename] = text
	}
	return results
}

// ProcessBatchConcurrent fans out one task per file and joins all results
// before returning. Results are isolated per filename, so the only
// coordination is the collection channel.
func (p *Processor) ProcessBatchConcurrent(ctx context.Context, files map[string][]byte) map[string]string {
	type keyed struct {
		filename string
		text     string
	}

	out := make(chan keyed, len(files))
	for filename, data := range files {
		go func(filename string, data []byte) {
			text, err := p.processContained(ctx, filename, data)
			if err != nil {
				out <- keyed{filename, fmt.Sprintf("Error processing %s: %v", filename, err)}
				return
			}
			out <- keyed{filename, text}
		}(filename, data)
	}

	results := make(map[string]string, len(files))
	for range files {
		r := <-out
		results[r.filename] = r.text
	}
	return results
}
