package docproc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractDOCX walks word/document.xml inside the OOXML archive and renders
// body paragraphs followed by table rows. Paragraph and row order follows
// the source document.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx archive has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open word/document.xml: %w", err)
	}
	defer rc.Close()

	paragraphs, rows, err := walkDocumentXML(rc)
	if err != nil {
		return "", fmt.Errorf("parse word/document.xml: %w", err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteString("\n")
	}
	for _, row := range rows {
		b.WriteString("Table row: ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// walkDocumentXML collects body-level paragraph texts (empty ones skipped)
// and table rows as slices of non-empty cell texts.
func walkDocumentXML(r io.Reader) ([]string, [][]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		rows       [][]string

		tableDepth int
		inText     bool
		para       strings.Builder
		cell       strings.Builder
		row        []string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					row = nil
				}
			case "tc":
				if tableDepth > 0 {
					cell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					para.Reset()
				}
			case "t":
				inText = true
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tableDepth > 0 {
				cell.Write(t)
			} else {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 {
					if text := para.String(); text != "" {
						paragraphs = append(paragraphs, text)
					}
					para.Reset()
				}
			case "tc":
				if tableDepth > 0 {
					if text := cell.String(); text != "" {
						row = append(row, text)
					}
				}
			case "tr":
				if tableDepth > 0 && len(row) > 0 {
					rows = append(rows, row)
					row = nil
				}
			case "tbl":
				tableDepth--
			}
		}
	}

	return paragraphs, rows, nil
}
