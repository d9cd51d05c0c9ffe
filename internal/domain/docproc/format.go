package docproc

import "errors"

var errNoTextExtractor = errors.New("no plain-text extractor for format")

// Format is the closed set of file kinds the pipeline understands. Dispatch
// happens through exhaustive switches on this type rather than a runtime
// lookup table, so adding a format is a compile-visible change.
type Format int

const (
	FormatPDF Format = iota + 1
	FormatDOCX
	FormatText
	FormatImage
)

// String returns the label used in prompts and error messages.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatDOCX:
		return "DOCX"
	case FormatText:
		return "TXT"
	case FormatImage:
		return "image"
	}
	return "unknown"
}

func formatForExtension(ext string) (Format, bool) {
	switch ext {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".txt":
		return FormatText, true
	case ".jpg", ".jpeg", ".png":
		return FormatImage, true
	}
	return 0, false
}

// extractText converts raw bytes into plain text for the non-vision
// formats. FormatImage has no plain-text intermediate and is handled by
// the vision path in the processor.
func (f Format) extractText(data []byte) (string, error) {
	switch f {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatText:
		return decodeText(data), nil
	}
	return "", errNoTextExtractor
}
