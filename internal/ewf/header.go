// Copyright (c) 2025 Oskar Kvist
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package ewf

import (
	"strings"
	"unicode/utf8"
)

// Canonical metadata keys. Acquisition tools write a zoo of one- and
// two-letter shorthands; keyAliases collapses the known ones onto these.
const (
	KeyCaseNumber       = "case_number"
	KeyDescription      = "description"
	KeyExaminerName     = "examiner_name"
	KeyEvidenceNumber   = "evidence_number"
	KeyNotes            = "notes"
	KeyAcquiredDate     = "acquired_date"
	KeySystemDate       = "system_date"
	KeyOperatingSystem  = "operating_system"
	KeyPassword         = "password"
	KeyCompressionLevel = "compression_level"
)

var keyAliases = map[string]string{
	"c":           KeyCaseNumber,
	"case":        KeyCaseNumber,
	"n":           KeyDescription,
	"name":        KeyDescription,
	"e":           KeyExaminerName,
	"examiner":    KeyExaminerName,
	"ev":          KeyEvidenceNumber,
	"evidence":    KeyEvidenceNumber,
	"no":          KeyNotes,
	"a":           KeyAcquiredDate,
	"acquired":    KeyAcquiredDate,
	"m":           KeySystemDate,
	"system":      KeySystemDate,
	"os":          KeyOperatingSystem,
	"p":           KeyPassword,
	"r":           KeyCompressionLevel,
	"compression": KeyCompressionLevel,
}

// CanonicalKey resolves a raw header key to its canonical form. Unknown
// keys pass through unchanged.
func CanonicalKey(key string) string {
	if canonical, ok := keyAliases[key]; ok {
		return canonical
	}
	return key
}

// decodeHeader parses the line-oriented key/value text of a header or
// header2 section into meta. The payload may be zlib-compressed; a leading
// 0x78 byte triggers an inflate attempt, falling back to the raw bytes when
// that fails. Entries from later sections override earlier ones.
func (d *decoder) decodeHeader(payload []byte, meta map[string]string) {
	if len(payload) == 0 {
		return
	}

	raw := payload
	if payload[0] == 0x78 && d.inflate != nil {
		if inflated, err := d.inflate(payload); err == nil {
			raw = inflated
		}
	}

	text := strings.ToValidUTF8(string(raw), string(utf8.RuneError))

	lines := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			fields = strings.Split(line, "=")
		}
		if len(fields) < 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(fields[0]))
		value := strings.TrimSpace(strings.Join(fields[1:], "="))
		if key == "" || value == "" {
			continue
		}
		meta[CanonicalKey(key)] = value
	}
}
