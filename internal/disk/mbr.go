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
	"encoding/binary"
	"fmt"
	"strings"
)

// MBRPartitionEntry represents a single 16-byte entry in the MBR's partition
// table. Multi-byte fields are kept as byte arrays so that little-endian
// conversion stays explicit at the read site.
type MBRPartitionEntry struct {
	BootIndicator uint8        // 0x00: 0x80 for bootable, 0x00 for inactive
	StartCHS      [3]byte      // 0x01: starting Cylinder-Head-Sector address
	PartitionType MBRPartition // 0x04: partition type ID (e.g. 0x0C for FAT32 LBA)
	EndCHS        [3]byte      // 0x05: ending Cylinder-Head-Sector address
	StartLBA      [4]byte      // 0x08: starting LBA, uint32 little-endian
	TotalSectors  [4]byte      // 0x0C: total sectors in partition, uint32 little-endian
}

// ReadStartLBA returns the starting LBA of the partition.
func (p *MBRPartitionEntry) ReadStartLBA() uint32 {
	return binary.LittleEndian.Uint32(p.StartLBA[:])
}

// ReadTotalSectors returns the total number of sectors in the partition.
func (p *MBRPartitionEntry) ReadTotalSectors() uint32 {
	return binary.LittleEndian.Uint32(p.TotalSectors[:])
}

// String provides a human-readable representation of an MBRPartitionEntry.
func (p *MBRPartitionEntry) String() string {
	bootable := "No"
	if p.BootIndicator == 0x80 {
		bootable = "Yes"
	}
	return fmt.Sprintf("  Bootable: %s (0x%02X)\n"+
		"  Partition Type: 0x%02X (%s)\n"+
		"  Start LBA: %d\n"+
		"  Total Sectors: %d",
		bootable, p.BootIndicator,
		uint8(p.PartitionType), p.PartitionType,
		p.ReadStartLBA(),
		p.ReadTotalSectors())
}

// MBR represents the Master Boot Record structure.
type MBR struct {
	BootCode         [440]byte            // 0x000-0x1B7: bootstrap code
	DiskSignature    [4]byte              // 0x1B8-0x1BB: optional 32-bit disk signature
	Reserved         [2]byte              // 0x1BC-0x1BD: usually 0x0000
	PartitionEntries [4]MBRPartitionEntry // 0x1BE-0x1FD: four 16-byte partition entries
	Signature        [2]byte              // 0x1FE-0x1FF: MBR signature (0x55AA)
}

// ReadDiskSignature returns the disk signature as a uint32.
func (m *MBR) ReadDiskSignature() uint32 {
	return binary.LittleEndian.Uint32(m.DiskSignature[:])
}

// ReadSignature returns the MBR signature (should be 0xAA55).
func (m *MBR) ReadSignature() uint16 {
	return binary.LittleEndian.Uint16(m.Signature[:])
}

// HasProtectiveEntry reports whether any slot carries the GPT protective
// type (0xEE), which means the MBR is only a compatibility shim and the
// real table is a GPT at LBA 1.
func (m *MBR) HasProtectiveEntry() bool {
	for i := range m.PartitionEntries {
		if m.PartitionEntries[i].PartitionType == PartitionTypeGPTProtective {
			return true
		}
	}
	return false
}

// String provides a human-readable representation of the MBR.
func (m *MBR) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Master Boot Record (MBR) ---\n"+
		"Disk Signature: 0x%08X\n"+
		"MBR Signature: 0x%04X (Expected: 0xAA55)\n\n"+
		"--- Partition Table Entries ---",
		m.ReadDiskSignature(), m.ReadSignature())

	for i := range m.PartitionEntries {
		fmt.Fprintf(&sb, "\nPartition %d:\n%s", i+1, m.PartitionEntries[i].String())
	}
	return sb.String()
}

// ParseMBR parses the first 512 bytes of a disk into an MBR struct. The
// input may be longer than one sector; anything past the boot signature is
// ignored.
func ParseMBR(data []byte) (*MBR, error) {
	const (
		mbrSize            = 512
		mbrSignatureOffset = 0x1FE
	)

	if len(data) < mbrSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d for an MBR", ErrTruncated, len(data), mbrSize)
	}

	var mbr MBR

	copy(mbr.BootCode[:], data[0x000:0x1B8])
	copy(mbr.DiskSignature[:], data[0x1B8:0x1BC])
	copy(mbr.Reserved[:], data[0x1BC:0x1BE])

	for i := 0; i < 4; i++ {
		entryOffset := 0x1BE + (i * 16) // each entry is 16 bytes
		entryBytes := data[entryOffset : entryOffset+16]

		mbr.PartitionEntries[i].BootIndicator = entryBytes[0x00]
		copy(mbr.PartitionEntries[i].StartCHS[:], entryBytes[0x01:0x04])
		mbr.PartitionEntries[i].PartitionType = MBRPartition(entryBytes[0x04])
		copy(mbr.PartitionEntries[i].EndCHS[:], entryBytes[0x05:0x08])
		copy(mbr.PartitionEntries[i].StartLBA[:], entryBytes[0x08:0x0C])
		copy(mbr.PartitionEntries[i].TotalSectors[:], entryBytes[0x0C:0x10])
	}

	copy(mbr.Signature[:], data[mbrSignatureOffset:mbrSignatureOffset+2])

	if mbr.ReadSignature() != 0xAA55 {
		return nil, fmt.Errorf("invalid MBR signature: expected 0xAA55, got 0x%04X", mbr.ReadSignature())
	}
	return &mbr, nil
}

// MBRPartition is the one-byte partition type ID of an MBR entry.
type MBRPartition uint8

const (
	PartitionTypeEmpty          MBRPartition = 0x00
	PartitionTypeFAT12          MBRPartition = 0x01
	PartitionTypeFAT16Small     MBRPartition = 0x04
	PartitionTypeExtendedCHS    MBRPartition = 0x05
	PartitionTypeFAT16          MBRPartition = 0x06
	PartitionTypeNTFS           MBRPartition = 0x07
	PartitionTypeFAT32CHS       MBRPartition = 0x0B
	PartitionTypeFAT32LBA       MBRPartition = 0x0C
	PartitionTypeFAT16LBA       MBRPartition = 0x0E
	PartitionTypeExtendedLBA    MBRPartition = 0x0F
	PartitionTypeHiddenFAT12    MBRPartition = 0x11
	PartitionTypeHiddenFAT16Sm  MBRPartition = 0x14
	PartitionTypeHiddenFAT16    MBRPartition = 0x16
	PartitionTypeHiddenNTFS     MBRPartition = 0x17
	PartitionTypeHiddenFAT32    MBRPartition = 0x1B
	PartitionTypeHiddenFAT32LBA MBRPartition = 0x1C
	PartitionTypeHiddenFAT16LBA MBRPartition = 0x1E
	PartitionTypeWinRecovery    MBRPartition = 0x27
	PartitionTypeWinDynamic     MBRPartition = 0x42
	PartitionTypeLinuxSwap      MBRPartition = 0x82
	PartitionTypeLinux          MBRPartition = 0x83
	PartitionTypeLinuxExtended  MBRPartition = 0x85
	PartitionTypeLinuxLVM       MBRPartition = 0x8E
	PartitionTypeGPTProtective  MBRPartition = 0xEE
	PartitionTypeEFISystem      MBRPartition = 0xEF
	PartitionTypeLinuxRAID      MBRPartition = 0xFD
)

// String maps common partition type IDs to names.
func (id MBRPartition) String() string {
	switch id {
	case PartitionTypeEmpty:
		return "Empty"
	case PartitionTypeFAT12:
		return "FAT12"
	case PartitionTypeFAT16Small:
		return "FAT16 (<32MB)"
	case PartitionTypeExtendedCHS:
		return "Extended"
	case PartitionTypeFAT16:
		return "FAT16"
	case PartitionTypeNTFS:
		return "NTFS/exFAT/HPFS"
	case PartitionTypeFAT32CHS:
		return "FAT32 (CHS)"
	case PartitionTypeFAT32LBA:
		return "FAT32 (LBA)"
	case PartitionTypeFAT16LBA:
		return "FAT16 (LBA)"
	case PartitionTypeExtendedLBA:
		return "Extended (LBA)"
	case PartitionTypeHiddenFAT12:
		return "Hidden FAT12"
	case PartitionTypeHiddenFAT16Sm:
		return "Hidden FAT16 (<32MB)"
	case PartitionTypeHiddenFAT16:
		return "Hidden FAT16"
	case PartitionTypeHiddenNTFS:
		return "Hidden NTFS"
	case PartitionTypeHiddenFAT32:
		return "Hidden FAT32"
	case PartitionTypeHiddenFAT32LBA:
		return "Hidden FAT32 (LBA)"
	case PartitionTypeHiddenFAT16LBA:
		return "Hidden FAT16 (LBA)"
	case PartitionTypeWinRecovery:
		return "Windows Recovery"
	case PartitionTypeWinDynamic:
		return "Windows Dynamic"
	case PartitionTypeLinuxSwap:
		return "Linux Swap"
	case PartitionTypeLinux:
		return "Linux"
	case PartitionTypeLinuxExtended:
		return "Linux Extended"
	case PartitionTypeLinuxLVM:
		return "Linux LVM"
	case PartitionTypeGPTProtective:
		return "GPT Protective MBR"
	case PartitionTypeEFISystem:
		return "EFI System"
	case PartitionTypeLinuxRAID:
		return "Linux RAID"
	default:
		return fmt.Sprintf("Unknown (0x%02X)", uint8(id))
	}
}

// FilesystemGuess returns the filesystem most likely carried by a
// partition of this type, or "" when the type implies none.
func (id MBRPartition) FilesystemGuess() string {
	switch id {
	case PartitionTypeFAT12, PartitionTypeHiddenFAT12:
		return "FAT12"
	case PartitionTypeFAT16Small, PartitionTypeFAT16, PartitionTypeFAT16LBA,
		PartitionTypeHiddenFAT16Sm, PartitionTypeHiddenFAT16, PartitionTypeHiddenFAT16LBA:
		return "FAT16"
	case PartitionTypeFAT32CHS, PartitionTypeFAT32LBA,
		PartitionTypeHiddenFAT32, PartitionTypeHiddenFAT32LBA:
		return "FAT32"
	case PartitionTypeNTFS, PartitionTypeHiddenNTFS:
		return "NTFS"
	case PartitionTypeLinux:
		return "ext4"
	case PartitionTypeEFISystem:
		return "FAT32"
	default:
		return ""
	}
}
