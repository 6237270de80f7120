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

// Package ewf decodes Expert Witness Format (EWF/E01) forensic disk images.
// It walks the section chain of a single segment file, collects case
// metadata, volume geometry and acquisition hashes, and reassembles the raw
// disk contents from the sector payload sections.
package ewf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Signature is the 8-byte magic at the start of every EWF segment file:
// "EVF" followed by 0x09 0x0D 0x0A 0xFF 0x00.
var Signature = [8]byte{0x45, 0x56, 0x46, 0x09, 0x0D, 0x0A, 0xFF, 0x00}

const (
	// fileHeaderSize covers the signature plus the 5-byte segment header
	// (fields start marker, segment number, fields end marker). The segment
	// number is not interpreted; multi-segment sets are not supported.
	fileHeaderSize = 13

	// descriptorSize is the fixed size of a section descriptor:
	// type[16], next_offset u64, size u64, padding[40], checksum u32.
	descriptorSize = 76

	sectionTypeLen = 16
)

var (
	ErrInvalidSignature = errors.New("invalid EWF signature")
	ErrTruncated        = errors.New("truncated data")
	ErrMalformedSection = errors.New("malformed section")
)

// Section is one decoded section descriptor together with its payload slice.
type Section struct {
	Type       string // lowercase, trimmed section type, e.g. "header", "sectors"
	NextOffset uint64 // absolute file offset of the next section descriptor
	Size       uint64 // size field as stored; payload is clipped to the file
	Offset     uint64 // absolute file offset of this descriptor
	Data       []byte // payload bytes, starting right after the descriptor
}

// VolumeInfo holds the media geometry decoded from a "volume" or "disk"
// section. All fields are stored little-endian on disk.
type VolumeInfo struct {
	MediaType       uint8
	ChunkCount      uint32
	SectorsPerChunk uint32
	BytesPerSector  uint32
	SectorCount     uint64
}

// TotalBytes returns the media size implied by the geometry.
func (v *VolumeInfo) TotalBytes() uint64 {
	return v.SectorCount * uint64(v.BytesPerSector)
}

// HashInfo holds the acquisition hashes from a "hash" or "digest" section,
// as lowercase hex strings. Either field may be empty.
type HashInfo struct {
	MD5  string
	SHA1 string
}

// ParseResult is the outcome of decoding one EWF segment file. Parse never
// fails outright: Valid reports whether the signature and framing were
// accepted, and Errors lists any sub-decoding problems encountered along
// the way. Partial results are always retained.
type ParseResult struct {
	Valid     bool
	Signature [8]byte
	Sections  []Section
	Metadata  map[string]string
	Volume    *VolumeInfo
	Hash      *HashInfo
	RawDisk   []byte
	Errors    []error
}

// Inflater decompresses a zlib stream. The decoder only needs this for
// compressed header sections; a failing or missing Inflater makes the
// decoder fall back to treating the payload as plain text.
type Inflater func(data []byte) ([]byte, error)

// Option configures the decoder.
type Option func(*decoder)

// WithInflater replaces the default zlib decompressor.
func WithInflater(fn Inflater) Option {
	return func(d *decoder) {
		d.inflate = fn
	}
}

type decoder struct {
	inflate Inflater
}

func decompressZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Parse decodes a complete EWF segment file held in memory.
func Parse(data []byte, opts ...Option) *ParseResult {
	d := &decoder{inflate: decompressZlib}
	for _, opt := range opts {
		opt(d)
	}

	res := &ParseResult{
		Metadata: make(map[string]string),
	}

	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], Signature[:]) {
		res.Errors = append(res.Errors,
			fmt.Errorf("%w: first %d bytes do not match the EVF magic", ErrInvalidSignature, len(Signature)))
		return res
	}
	copy(res.Signature[:], data)
	res.Valid = true

	var chunks [][]byte

	offset := uint64(fileHeaderSize)
walk:
	for offset < uint64(len(data)) && uint64(len(data))-offset >= descriptorSize {
		desc := data[offset : offset+descriptorSize]

		typ := strings.ToLower(strings.Trim(string(desc[:sectionTypeLen]), "\x00 \t\r\n"))
		nextOffset := binary.LittleEndian.Uint64(desc[16:24])
		size := binary.LittleEndian.Uint64(desc[24:32])

		if typ == "" || size == 0 {
			break
		}

		payloadStart := offset + descriptorSize
		payloadLen := min(size, uint64(len(data))-payloadStart)
		payload := data[payloadStart : payloadStart+payloadLen]

		res.Sections = append(res.Sections, Section{
			Type:       typ,
			NextOffset: nextOffset,
			Size:       size,
			Offset:     offset,
			Data:       payload,
		})

		switch typ {
		case "header", "header2":
			d.decodeHeader(payload, res.Metadata)
		case "volume", "disk":
			vol, err := decodeVolume(payload)
			if err != nil {
				res.Errors = append(res.Errors, sectionErr(typ, offset, err))
			} else {
				res.Volume = vol
			}
		case "sectors", "data":
			chunks = append(chunks, payload)
		case "hash", "digest":
			h, err := decodeHash(payload)
			if err != nil {
				res.Errors = append(res.Errors, sectionErr(typ, offset, err))
			} else {
				res.Hash = h
			}
		case "done":
			break walk
		}

		// Prefer the descriptor's forward link; fall back to skipping the
		// payload when the link does not move forward. Any non-monotone
		// offset terminates the walk so that a corrupt chain cannot loop.
		next := payloadStart + payloadLen
		if nextOffset > offset {
			next = nextOffset
		}
		if next <= offset {
			break
		}
		offset = next
	}

	if len(chunks) > 0 {
		res.RawDisk = bytes.Join(chunks, nil)
	}
	return res
}

func sectionErr(typ string, offset uint64, err error) error {
	return fmt.Errorf("%w: %q section at offset %d: %w", ErrMalformedSection, typ, offset, err)
}

// decodeVolume reads the media geometry fields from the start of a volume
// or disk section payload.
func decodeVolume(payload []byte) (*VolumeInfo, error) {
	const volumeInfoSize = 32

	if len(payload) < volumeInfoSize {
		return nil, fmt.Errorf("%w: volume section has %d bytes, need %d",
			ErrTruncated, len(payload), volumeInfoSize)
	}
	return &VolumeInfo{
		MediaType:       payload[0],
		ChunkCount:      binary.LittleEndian.Uint32(payload[4:8]),
		SectorsPerChunk: binary.LittleEndian.Uint32(payload[8:12]),
		BytesPerSector:  binary.LittleEndian.Uint32(payload[12:16]),
		SectorCount:     binary.LittleEndian.Uint64(payload[16:24]),
	}, nil
}

// decodeHash reads the MD5 digest (and, when present, the SHA1 digest) from
// a hash or digest section payload.
func decodeHash(payload []byte) (*HashInfo, error) {
	const (
		md5Size  = 16
		sha1Size = 20
	)

	if len(payload) < md5Size {
		return nil, fmt.Errorf("%w: hash section has %d bytes, need %d",
			ErrTruncated, len(payload), md5Size)
	}
	h := &HashInfo{
		MD5: hex.EncodeToString(payload[:md5Size]),
	}
	if len(payload) >= md5Size+sha1Size {
		h.SHA1 = hex.EncodeToString(payload[md5Size : md5Size+sha1Size])
	}
	return h, nil
}
