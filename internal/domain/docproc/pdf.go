package docproc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text out of every page of a PDF document, in
// source page order. The pdf library panics on some malformed files that
// pass its header and xref checks; those surface here as parse errors.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", pageNum, err)
		}
		pages = append(pages, text)
	}

	return assemblePages(pages), nil
}

// assemblePages joins per-page text with a page delimiter header. Pages
// without extractable text contribute nothing, so the delimiters that do
// appear always carry the original page number.
func assemblePages(pages []string) string {
	var b strings.Builder
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s", i+1, text)
	}
	return b.String()
}
