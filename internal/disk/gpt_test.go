package disk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// efiSystemGUID is the on-disk (mixed-endian) encoding of
// c12a7328-f81f-11d2-ba4b-00a0c93ec93b.
var efiSystemGUID = []byte{
	0x28, 0x73, 0x2A, 0xC1, 0x1F, 0xF8, 0xD2, 0x11,
	0xBA, 0x4B, 0x00, 0xA0, 0xC9, 0x3E, 0xC9, 0x3B,
}

// gptEntry builds one 128-byte partition entry.
func gptEntry(typeGUID, partGUID []byte, startLBA, endLBA uint64, name string) []byte {
	e := make([]byte, gptEntrySize)
	copy(e[0:16], typeGUID)
	copy(e[16:32], partGUID)
	binary.LittleEndian.PutUint64(e[32:40], startLBA)
	binary.LittleEndian.PutUint64(e[40:48], endLBA)
	for i, r := range name {
		if 56+i*2+1 >= 128 {
			break
		}
		binary.LittleEndian.PutUint16(e[56+i*2:], uint16(r))
	}
	return e
}

// gptDisk builds a disk with a protective MBR, a GPT header at LBA 1 and
// the given entries starting at LBA 2.
func gptDisk(t *testing.T, entries ...[]byte) []byte {
	t.Helper()

	diskData := make([]byte, 512*(2+len(entries)))
	copy(diskData, mbrSector(mbrEntry(0, PartitionTypeGPTProtective, 1, 0xFFFFFFFF)))

	hdr := diskData[512:]
	copy(hdr, "EFI PART")
	copy(hdr[56:72], efiSystemGUID) // reuse a known GUID as disk GUID
	binary.LittleEndian.PutUint64(hdr[72:80], 2)
	binary.LittleEndian.PutUint32(hdr[80:84], uint32(len(entries)))
	binary.LittleEndian.PutUint32(hdr[84:88], gptEntrySize)

	for i, e := range entries {
		copy(diskData[1024+i*gptEntrySize:], e)
	}
	return diskData
}

func TestProtectiveMBREscalatesToGPT(t *testing.T) {
	partGUID := make([]byte, 16)
	partGUID[0] = 0x01

	diskData := gptDisk(t, gptEntry(efiSystemGUID, partGUID, 34, 2081, "EFI System"))

	table := ParsePartitionTable(diskData, 512)

	require.Equal(t, SchemeGPT, table.Scheme)
	require.Equal(t, "c12a7328-f81f-11d2-ba4b-00a0c93ec93b", table.DiskGUID)
	require.Len(t, table.Partitions, 1)

	p := table.Partitions[0]
	require.Equal(t, 1, p.Index)
	require.Equal(t, "EFI System", p.Type)
	require.Equal(t, "c12a7328-f81f-11d2-ba4b-00a0c93ec93b", p.TypeGUID)
	require.Equal(t, uint64(34), p.StartLBA)
	require.Equal(t, uint64(2081), p.EndLBA)
	require.Equal(t, uint64(2048), p.SizeLBA)
	require.Equal(t, uint64(2048*512), p.SizeBytes)
	require.Equal(t, "EFI System", p.Name)
	require.Equal(t, "FAT32", p.Filesystem)
}

func TestGPTSkipsZeroTypeGUID(t *testing.T) {
	empty := make([]byte, gptEntrySize)
	used := gptEntry(efiSystemGUID, efiSystemGUID, 100, 199, "data")

	table := ParsePartitionTable(gptDisk(t, empty, used), 512)

	require.Len(t, table.Partitions, 1)
	require.Equal(t, 2, table.Partitions[0].Index)
}

func TestGPTUnknownTypeGUID(t *testing.T) {
	unknown := make([]byte, 16)
	for i := range unknown {
		unknown[i] = 0xAB
	}

	table := ParsePartitionTable(gptDisk(t, gptEntry(unknown, unknown, 10, 19, "")), 512)

	require.Len(t, table.Partitions, 1)
	require.Contains(t, table.Partitions[0].Type, "Unknown (abababab-")
	require.Empty(t, table.Partitions[0].Filesystem)
}

func TestGPTMissingHeader(t *testing.T) {
	// Protective MBR but no EFI PART signature behind it.
	diskData := make([]byte, 2048)
	copy(diskData, mbrSector(mbrEntry(0, PartitionTypeGPTProtective, 1, 0xFFFFFFFF)))

	table := ParsePartitionTable(diskData, 512)
	require.Equal(t, SchemeUnknown, table.Scheme)
	require.Len(t, table.Errors, 1)
	require.ErrorIs(t, table.Errors[0], ErrUnknownPartitionScheme)
}

func TestGPTTruncatedBeforeHeader(t *testing.T) {
	diskData := mbrSector(mbrEntry(0, PartitionTypeGPTProtective, 1, 0xFFFFFFFF))

	table := ParsePartitionTable(diskData, 512)
	require.Equal(t, SchemeUnknown, table.Scheme)
	require.ErrorIs(t, table.Errors[0], ErrTruncated)
}

func TestGPTTruncatedEntryArrayStops(t *testing.T) {
	diskData := gptDisk(t, gptEntry(efiSystemGUID, efiSystemGUID, 34, 99, "ok"))
	// Claim more entries than the buffer holds.
	binary.LittleEndian.PutUint32(diskData[512+80:], 8)

	table := ParsePartitionTable(diskData, 512)
	require.Equal(t, SchemeGPT, table.Scheme)
	require.Len(t, table.Partitions, 1)
	require.NotEmpty(t, table.Errors)
	require.ErrorIs(t, table.Errors[0], ErrTruncated)
}

func TestFormatGUID(t *testing.T) {
	require.Equal(t, "c12a7328-f81f-11d2-ba4b-00a0c93ec93b", FormatGUID(efiSystemGUID))
	require.Equal(t, "", FormatGUID([]byte{1, 2, 3}))

	zero := make([]byte, 16)
	require.Equal(t, "00000000-0000-0000-0000-000000000000", FormatGUID(zero))
}
