package docproc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// textEncodings is the ordered ladder of decoders tried for plain-text
// files, mirroring the content most uploads actually carry.
var textEncodings = []struct {
	name string
	enc  *charmap.Charmap
}{
	{"latin-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// decodeText decodes bytes using the first encoding that succeeds: UTF-8
// when the bytes are valid, then the single-byte ladder. It never fails;
// the terminal fallback substitutes the replacement rune for anything
// undecodable.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	for _, candidate := range textEncodings {
		if text, err := decodeWith(candidate.enc.NewDecoder(), data); err == nil {
			return text
		}
	}
	// Permissive fallback: replace invalid sequences rather than fail.
	return string(bytesToValidUTF8(data))
}

func decodeWith(dec *encoding.Decoder, data []byte) (string, error) {
	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func bytesToValidUTF8(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			out = append(out, []byte(string(utf8.RuneError))...)
		} else {
			out = append(out, data[:size]...)
		}
		data = data[size:]
	}
	return out
}
