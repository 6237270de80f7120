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

// Package disk locates and decodes partition tables on a raw disk image.
// An MBR is tried first; a protective-MBR entry escalates to GPT.
package disk

import (
	"errors"
	"fmt"
)

const DefaultBlocksize = 512

var (
	ErrUnknownPartitionScheme = errors.New("unknown partition scheme")
	ErrTruncated              = errors.New("truncated data")
)

// Scheme identifies the partition table layout found on a disk.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeMBR
	SchemeGPT
)

func (s Scheme) String() string {
	switch s {
	case SchemeMBR:
		return "MBR"
	case SchemeGPT:
		return "GPT"
	default:
		return "Unknown"
	}
}

// Partition is one entry of a decoded partition table, normalized across
// MBR and GPT. TypeCode is populated for MBR entries, TypeGUID/Name/GUID
// for GPT entries.
type Partition struct {
	Index      int    // 1-based slot (MBR) or entry (GPT) number
	Type       string // human-readable partition type
	TypeCode   uint8  // MBR partition type byte
	TypeGUID   string // GPT partition type GUID
	StartLBA   uint64
	EndLBA     uint64 // inclusive
	SizeLBA    uint64
	SizeBytes  uint64
	Bootable   bool   // MBR boot indicator
	Name       string // GPT partition label
	GUID       string // GPT unique partition GUID
	Filesystem string // filesystem guess from the type table, may be empty
}

// PartitionTable is the decoded table together with any problems hit while
// decoding it. A table of SchemeUnknown carries no partitions.
type PartitionTable struct {
	Scheme     Scheme
	SectorSize uint32
	Partitions []Partition
	DiskGUID   string // GPT only
	Errors     []error
}

// ParsePartitionTable decodes the partition table at the start of a raw
// disk image. sectorSize 0 selects the default of 512 bytes. The function
// never fails; an undecodable disk yields a SchemeUnknown table with the
// reason in Errors.
func ParsePartitionTable(data []byte, sectorSize uint32) *PartitionTable {
	if sectorSize == 0 {
		sectorSize = DefaultBlocksize
	}

	mbr, err := ParseMBR(data)
	if err != nil {
		return &PartitionTable{
			Scheme:     SchemeUnknown,
			SectorSize: sectorSize,
			Errors:     []error{fmt.Errorf("%w: %w", ErrUnknownPartitionScheme, err)},
		}
	}

	if mbr.HasProtectiveEntry() {
		return parseGPT(data, sectorSize)
	}

	table := &PartitionTable{
		Scheme:     SchemeMBR,
		SectorSize: sectorSize,
	}
	for i, entry := range mbr.PartitionEntries {
		if entry.PartitionType == PartitionTypeEmpty {
			continue
		}

		startLBA := uint64(entry.ReadStartLBA())
		sizeLBA := uint64(entry.ReadTotalSectors())
		endLBA := startLBA
		if sizeLBA > 0 {
			endLBA = startLBA + sizeLBA - 1
		}

		table.Partitions = append(table.Partitions, Partition{
			Index:      i + 1,
			Type:       entry.PartitionType.String(),
			TypeCode:   uint8(entry.PartitionType),
			StartLBA:   startLBA,
			EndLBA:     endLBA,
			SizeLBA:    sizeLBA,
			SizeBytes:  sizeLBA * uint64(sectorSize),
			Bootable:   entry.BootIndicator == 0x80,
			Filesystem: entry.PartitionType.FilesystemGuess(),
		})
	}
	return table
}

// ExtractPartitionData returns the byte range covered by p, clipped to the
// available disk buffer. A partition lying entirely beyond the buffer
// yields an empty slice.
func ExtractPartitionData(data []byte, p Partition, sectorSize uint32) []byte {
	if sectorSize == 0 {
		sectorSize = DefaultBlocksize
	}

	// Compare in sector units first so that a huge StartLBA cannot wrap
	// the byte multiplication.
	if p.StartLBA > uint64(len(data))/uint64(sectorSize) {
		return nil
	}
	start := p.StartLBA * uint64(sectorSize)
	if start >= uint64(len(data)) {
		return nil
	}
	end := start + p.SizeLBA*uint64(sectorSize)
	if end < start || end > uint64(len(data)) {
		end = uint64(len(data))
	}
	return data[start:end]
}
