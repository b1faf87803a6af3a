package buf

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const asciiThreshold = 0x80

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF16LE converts UTF-16LE bytes to a UTF-8 string. Names and most event
// values are plain ASCII, so that case skips the transcoder entirely.
func DecodeUTF16LE(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data)%2 == 0 && isASCII16(data) {
		var b strings.Builder
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}
	out, err := utf16le.NewDecoder().Bytes(data)
	if err != nil {
		// The decoder substitutes U+FFFD for malformed input; an error here
		// means the odd trailing byte, which we drop.
		out, _ = utf16le.NewDecoder().Bytes(data[:len(data)&^1])
	}
	return string(out)
}

// TrimNUL strips trailing NUL characters left by fixed-size or NUL-terminated
// UTF-16 fields.
func TrimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}

func isASCII16(data []byte) bool {
	for i := 0; i < len(data); i += 2 {
		if data[i+1] != 0 || data[i] >= asciiThreshold {
			return false
		}
	}
	return true
}
