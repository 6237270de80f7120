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
package fat

import (
	"encoding/binary"
	"strings"

	"github.com/okvist/exhume/internal/utf16x"
)

// Directory entry attribute bits.
const (
	attrHidden    = 0x02
	attrSystem    = 0x04
	attrVolumeID  = 0x08
	attrDirectory = 0x10
	attrLongName  = 0x0F // low four bits all set marks an LFN slot
)

const (
	entryDeleted = 0xE5
	// A leading 0x05 escapes a real 0xE5 first character in a short name.
	entryKanjiEscape = 0x05
)

// lfnCharOffsets are the within-entry positions of the 13 UTF-16LE code
// units carried by one long filename slot.
var lfnCharOffsets = []int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}

// lfnBuffer accumulates long filename fragments keyed by their slot
// ordinal. Slots arrive on disk in descending ordinal order ahead of the
// short entry they name.
type lfnBuffer struct {
	parts []string
}

func (b *lfnBuffer) set(ordinal int, s string) {
	for len(b.parts) < ordinal {
		b.parts = append(b.parts, "")
	}
	b.parts[ordinal-1] = s
}

func (b *lfnBuffer) empty() bool {
	return len(b.parts) == 0
}

// take joins the buffered fragments in ordinal order and resets the buffer.
func (b *lfnBuffer) take() string {
	name := strings.Join(b.parts, "")
	b.parts = b.parts[:0]
	return name
}

func (b *lfnBuffer) reset() {
	b.parts = b.parts[:0]
}

// decodeDirectory parses the 32-byte directory entries in dirData and
// recurses into subdirectories up to the depth cap. Entries of exceeded
// directories keep a nil Children list; this is not reported as an error.
func (v *volume) decodeDirectory(dirData []byte, parentPath string, depth int) []*Entry {
	var (
		entries []*Entry
		lfn     lfnBuffer
	)

	for i := 0; i+dirEntrySize <= len(dirData); i += dirEntrySize {
		raw := dirData[i : i+dirEntrySize]

		switch raw[0] {
		case 0x00: // free entry, no entries follow
			return entries
		case entryDeleted:
			continue
		}

		attr := raw[11]
		if attr&attrLongName == attrLongName {
			ordinal := int(raw[0] & 0x3F)
			if ordinal >= 1 {
				lfn.set(ordinal, decodeLFNSlot(raw))
			}
			continue
		}

		if attr&attrVolumeID != 0 && attr&attrDirectory == 0 {
			continue
		}

		nameBytes := make([]byte, 8)
		copy(nameBytes, raw[0:8])
		if nameBytes[0] == entryKanjiEscape {
			nameBytes[0] = entryDeleted
		}
		shortName := trimPadded(nameBytes)
		extension := trimPadded(raw[8:11])

		isDot := shortName == "." || shortName == ".."
		if isDot {
			lfn.reset()
			continue
		}

		name := shortName
		if !lfn.empty() {
			name = lfn.take()
		} else if extension != "" {
			name = shortName + "." + extension
		}

		cluster := uint32(binary.LittleEndian.Uint16(raw[20:22]))<<16 |
			uint32(binary.LittleEndian.Uint16(raw[26:28]))

		entry := &Entry{
			Name:      name,
			ShortName: shortName,
			Extension: extension,
			IsDir:     attr&attrDirectory != 0,
			Hidden:    attr&attrHidden != 0,
			System:    attr&attrSystem != 0,
			Cluster:   cluster,
			Path:      parentPath + "/" + name,
		}
		if !entry.IsDir {
			entry.Size = binary.LittleEndian.Uint32(raw[28:32])
		}

		if entry.IsDir && cluster >= 2 && depth < maxDirDepth {
			sub := v.readClusterChain(cluster)
			entry.Children = v.decodeDirectory(sub, entry.Path, depth+1)
		}
		entries = append(entries, entry)
	}
	return entries
}

// decodeLFNSlot extracts the name fragment of one long filename entry.
// Code units 0x0000 and 0xFFFF terminate the fragment.
func decodeLFNSlot(raw []byte) string {
	var pairs []byte
	for _, off := range lfnCharOffsets {
		u := binary.LittleEndian.Uint16(raw[off : off+2])
		if u == 0x0000 || u == 0xFFFF {
			break
		}
		pairs = append(pairs, raw[off], raw[off+1])
	}
	s, err := utf16x.DecodeLE(pairs)
	if err != nil {
		return ""
	}
	return s
}
