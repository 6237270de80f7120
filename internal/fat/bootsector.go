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
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// BootSectorSize is the size of the BIOS parameter block sector.
const BootSectorSize = 512

// rawBootSector maps the full 512-byte boot sector in its FAT32 layout.
// FAT12/16 volumes reuse the prefix up to TotalSectors32; their extended
// BPB fields sit where the FAT32 geometry fields are and are read from the
// raw bytes instead.
type rawBootSector struct {
	Jump              [3]byte  // 0x00 boot strap short or near jump
	OEMName           [8]byte  // 0x03 formatting tool identifier
	SectorSize        uint16   // 0x0B bytes per logical sector
	SectorsPerCluster uint8    // 0x0D sectors per cluster
	ReservedSectors   uint16   // 0x0E reserved sectors before the first FAT
	NumFATs           uint8    // 0x10 number of FAT copies
	RootEntries       uint16   // 0x11 root directory entries (FAT12/16)
	TotalSectors16    uint16   // 0x13 total sectors, 16-bit field
	Media             uint8    // 0x15 media code (unused)
	SectorsPerFAT16   uint16   // 0x16 sectors per FAT, 16-bit field
	SectorsPerTrack   uint16   // 0x18 sectors per track
	Heads             uint16   // 0x1A number of heads
	HiddenSectors     uint32   // 0x1C hidden sectors (unused)
	TotalSectors32    uint32   // 0x20 total sectors when TotalSectors16 == 0
	SectorsPerFAT32   uint32   // 0x24 sectors per FAT (FAT32)
	Flags             uint16   // 0x28 FAT mirroring flags
	Version           uint16   // 0x2A filesystem version
	RootCluster       uint32   // 0x2C first cluster of the root directory (FAT32)
	InfoSector        uint16   // 0x30 filesystem info sector
	BackupBoot        uint16   // 0x32 backup boot sector
	BPBReserved       [12]byte // 0x34 unused
	DriveNum          uint8    // 0x40 drive number
	Reserved1         uint8    // 0x41 reserved
	BootSig           uint8    // 0x42 extended boot signature
	VolumeID          [4]byte  // 0x43 volume serial number
	VolumeLabel       [11]byte // 0x47 volume label (FAT32)
	FilesystemType    [8]byte  // 0x52 filesystem type string (FAT32)
	BootCode          [420]byte
	Marker            uint16 // 0x1FE boot sector signature (0xAA55)
}

// Extended BPB field offsets of the FAT12/16 layout.
const (
	fat1xLabelOffset  = 43
	fat1xFSTypeOffset = 54
)

// BootSector holds the BIOS parameter block fields normalized across the
// FAT12/16 and FAT32 layouts.
type BootSector struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors      uint32
	SectorsPerFAT     uint32
	RootCluster       uint32 // FAT32 only, 0 otherwise
	VolumeLabel       string
	FSType            string
}

// parseBootSector decodes and normalizes the boot sector at the start of a
// partition.
func parseBootSector(data []byte) (BootSector, error) {
	if len(data) < BootSectorSize {
		return BootSector{}, fmt.Errorf("%w: partition has %d bytes, need at least %d",
			ErrTruncated, len(data), BootSectorSize)
	}

	var raw rawBootSector
	if err := binary.Read(bytes.NewReader(data[:BootSectorSize]), binary.LittleEndian, &raw); err != nil {
		return BootSector{}, err
	}
	if raw.Marker != 0xAA55 {
		return BootSector{}, fmt.Errorf("%w: boot sector marker is 0x%04X, expected 0xAA55",
			ErrInvalidBootSector, raw.Marker)
	}

	bs := BootSector{
		BytesPerSector:    raw.SectorSize,
		SectorsPerCluster: raw.SectorsPerCluster,
		ReservedSectors:   raw.ReservedSectors,
		NumFATs:           raw.NumFATs,
		RootEntryCount:    raw.RootEntries,
		TotalSectors:      uint32(raw.TotalSectors16),
		SectorsPerFAT:     uint32(raw.SectorsPerFAT16),
	}
	if raw.TotalSectors16 == 0 {
		bs.TotalSectors = raw.TotalSectors32
	}

	if raw.SectorsPerFAT16 == 0 {
		// FAT32 layout.
		bs.SectorsPerFAT = raw.SectorsPerFAT32
		bs.RootCluster = raw.RootCluster
		bs.VolumeLabel = trimPadded(raw.VolumeLabel[:])
		bs.FSType = trimPadded(raw.FilesystemType[:])
	} else {
		bs.VolumeLabel = trimPadded(data[fat1xLabelOffset : fat1xLabelOffset+11])
		bs.FSType = trimPadded(data[fat1xFSTypeOffset : fat1xFSTypeOffset+8])
	}
	return bs, nil
}

func trimPadded(b []byte) string {
	return strings.Trim(string(b), " \x00")
}
