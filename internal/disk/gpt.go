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
package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/okvist/exhume/internal/utf16x"
)

const (
	gptHeaderSize = 92
	gptEntrySize  = 128
	// maxGPTEntries bounds the entry walk; standard disks carry 128 slots
	// and a larger advertised count on a crafted image must not be trusted.
	maxGPTEntries = 128
)

var gptSignature = []byte("EFI PART")

// parseGPT decodes the GPT header at LBA 1 and its partition entry array.
// It is reached only through a protective MBR, so a bad header degrades to
// SchemeUnknown rather than falling back to the shim MBR.
func parseGPT(data []byte, sectorSize uint32) *PartitionTable {
	table := &PartitionTable{
		Scheme:     SchemeGPT,
		SectorSize: sectorSize,
	}

	hdrStart := uint64(sectorSize)
	if hdrStart+gptHeaderSize > uint64(len(data)) {
		table.Scheme = SchemeUnknown
		table.Errors = append(table.Errors,
			fmt.Errorf("%w: disk ends before the GPT header at offset %d", ErrTruncated, hdrStart))
		return table
	}
	hdr := data[hdrStart : hdrStart+gptHeaderSize]

	if !bytes.Equal(hdr[:8], gptSignature) {
		table.Scheme = SchemeUnknown
		table.Errors = append(table.Errors,
			fmt.Errorf("%w: protective MBR present but no EFI PART header at LBA 1", ErrUnknownPartitionScheme))
		return table
	}

	table.DiskGUID = FormatGUID(hdr[56:72])

	entryLBA := binary.LittleEndian.Uint64(hdr[72:80])
	numEntries := binary.LittleEndian.Uint32(hdr[80:84])
	entrySize := binary.LittleEndian.Uint32(hdr[84:88])

	if entrySize < gptEntrySize {
		table.Errors = append(table.Errors,
			fmt.Errorf("%w: partition entry size %d is below the %d-byte minimum",
				ErrUnknownPartitionScheme, entrySize, gptEntrySize))
		return table
	}
	if numEntries > maxGPTEntries {
		numEntries = maxGPTEntries
	}

	arrayStart := entryLBA * uint64(sectorSize)
	for i := uint32(0); i < numEntries; i++ {
		offset := arrayStart + uint64(i)*uint64(entrySize)
		if offset > uint64(len(data)) || uint64(len(data))-offset < uint64(entrySize) {
			table.Errors = append(table.Errors,
				fmt.Errorf("%w: partition entry %d at offset %d exceeds the disk buffer",
					ErrTruncated, i+1, offset))
			break
		}
		entry := data[offset : offset+uint64(entrySize)]

		typeGUID := entry[0:16]
		if isZeroGUID(typeGUID) {
			continue
		}

		startLBA := binary.LittleEndian.Uint64(entry[32:40])
		endLBA := binary.LittleEndian.Uint64(entry[40:48])
		if endLBA < startLBA {
			continue
		}
		sizeLBA := endLBA - startLBA + 1

		name, err := utf16x.DecodeLE(entry[56:128])
		if err != nil {
			name = ""
		}

		typeStr := FormatGUID(typeGUID)
		table.Partitions = append(table.Partitions, Partition{
			Index:      int(i) + 1,
			Type:       gptTypeName(typeStr),
			TypeGUID:   typeStr,
			StartLBA:   startLBA,
			EndLBA:     endLBA,
			SizeLBA:    sizeLBA,
			SizeBytes:  sizeLBA * uint64(sectorSize),
			Name:       name,
			GUID:       FormatGUID(entry[16:32]),
			Filesystem: gptFilesystemGuess(typeStr),
		})
	}
	return table
}

func isZeroGUID(g []byte) bool {
	for _, b := range g {
		if b != 0 {
			return false
		}
	}
	return true
}

// FormatGUID renders a 16-byte on-disk GUID in its canonical printed form.
// The first three fields are little-endian, the last two are plain byte
// order, per the UEFI specification.
func FormatGUID(g []byte) string {
	if len(g) < 16 {
		return ""
	}
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%x",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		binary.BigEndian.Uint16(g[8:10]),
		g[10:16])
}

// Well-known GPT partition type GUIDs, in canonical printed form.
const (
	GUIDTypeEFISystem   = "c12a7328-f81f-11d2-ba4b-00a0c93ec93b"
	GUIDTypeMBRScheme   = "024dee41-33e7-11d3-9d69-0008c781f39f"
	GUIDTypeMSReserved  = "e3c9e316-0b5c-4db8-817d-f92df00215ae"
	GUIDTypeMSBasicData = "ebd0a0a2-b9e5-4433-87c0-68b6b72699c7"
	GUIDTypeWinRecovery = "de94bba4-06d1-4d40-a16a-bfd50179d6ac"
	GUIDTypeLinuxFS     = "0fc63daf-8483-4772-8e79-3d69d8477de4"
	GUIDTypeLinuxSwap   = "0657fd6d-a4ab-43c4-84e5-0933c84b4f4f"
	GUIDTypeLinuxLVM    = "e6d6d379-f507-44c2-a23c-238f2a3df928"
	GUIDTypeLinuxHome   = "933ac7e1-2eb4-4f13-b844-0e14e2aef915"
	GUIDTypeAppleHFS    = "48465300-0000-11aa-aa11-00306543ecac"
	GUIDTypeAppleAPFS   = "7c3457ef-0000-11aa-aa11-00306543ecac"
)

func gptTypeName(guid string) string {
	switch guid {
	case GUIDTypeEFISystem:
		return "EFI System"
	case GUIDTypeMBRScheme:
		return "MBR Partition Scheme"
	case GUIDTypeMSReserved:
		return "Microsoft Reserved"
	case GUIDTypeMSBasicData:
		return "Microsoft Basic Data"
	case GUIDTypeWinRecovery:
		return "Windows Recovery"
	case GUIDTypeLinuxFS:
		return "Linux Filesystem"
	case GUIDTypeLinuxSwap:
		return "Linux Swap"
	case GUIDTypeLinuxLVM:
		return "Linux LVM"
	case GUIDTypeLinuxHome:
		return "Linux Home"
	case GUIDTypeAppleHFS:
		return "Apple HFS+"
	case GUIDTypeAppleAPFS:
		return "Apple APFS"
	default:
		return fmt.Sprintf("Unknown (%s)", guid)
	}
}

func gptFilesystemGuess(guid string) string {
	switch guid {
	case GUIDTypeEFISystem:
		return "FAT32"
	case GUIDTypeMSBasicData:
		return "NTFS"
	case GUIDTypeLinuxFS:
		return "ext4"
	case GUIDTypeAppleHFS:
		return "HFS+"
	case GUIDTypeAppleAPFS:
		return "APFS"
	default:
		return ""
	}
}
