// Package utf16x decodes the little-endian UTF-16 strings found in GPT
// partition entries and FAT long filename slots.
package utf16x

import (
	"golang.org/x/text/encoding/unicode"
)

var decoderLE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeLE converts UTF-16LE bytes to a UTF-8 string. The input is cut at
// the first NUL code unit, matching how on-disk fixed-size name fields are
// padded.
func DecodeLE(b []byte) (string, error) {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	out, err := decoderLE.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
