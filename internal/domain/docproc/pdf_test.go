package docproc

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssemblePages(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{
			name:  "single page",
			pages: []string{"hello"},
			want:  "\n--- Page 1 ---\nhello",
		},
		{
			name:  "multiple pages keep order",
			pages: []string{"first", "second"},
			want:  "\n--- Page 1 ---\nfirst\n--- Page 2 ---\nsecond",
		},
		{
			name:  "textless page keeps original numbering",
			pages: []string{"first", "   ", "third"},
			want:  "\n--- Page 1 ---\nfirst\n--- Page 3 ---\nthird",
		},
		{
			name:  "all pages empty",
			pages: []string{"", "\t\n"},
			want:  "",
		},
		{
			name:  "no pages",
			pages: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, assemblePages(tt.pages))
		})
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	_, err := extractPDF([]byte("this is not a pdf"))
	require.Error(t, err)
}

// malformedPDF builds a file with a well-formed header, xref table and
// trailer whose root object offset points at garbage. The pdf library
// accepts it in NewReader and then panics when the object is resolved.
func malformedPDF() []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	objOffset := b.Len()
	b.WriteString("garbage garbage garbage\n")
	xrefOffset := b.Len()
	b.WriteString("xref\n0 2\n")
	b.WriteString("0000000000 65535 f \n")
	fmt.Fprintf(&b, "%010d 00000 n \n", objOffset)
	b.WriteString("trailer\n<< /Size 2 /Root 1 0 R >>\n")
	fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return b.Bytes()
}

func TestExtractPDFContainsLibraryPanics(t *testing.T) {
	var err error
	require.NotPanics(t, func() {
		_, err = extractPDF(malformedPDF())
	})
	require.Error(t, err)
}
