package disk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// mbrSector builds a 512-byte boot sector with the given partition entries
// placed in slot order.
func mbrSector(entries ...[16]byte) []byte {
	sector := make([]byte, 512)
	for i, e := range entries {
		copy(sector[446+i*16:], e[:])
	}
	sector[510] = 0x55
	sector[511] = 0xAA
	return sector
}

func mbrEntry(boot byte, typ MBRPartition, startLBA, sizeLBA uint32) [16]byte {
	var e [16]byte
	e[0] = boot
	e[4] = byte(typ)
	binary.LittleEndian.PutUint32(e[8:], startLBA)
	binary.LittleEndian.PutUint32(e[12:], sizeLBA)
	return e
}

func TestParseMBRRejectsShortInput(t *testing.T) {
	_, err := ParseMBR(make([]byte, 100))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseMBRRejectsBadSignature(t *testing.T) {
	_, err := ParseMBR(make([]byte, 512))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid MBR signature")
}

func TestParseMBRFields(t *testing.T) {
	sector := mbrSector(mbrEntry(0x80, PartitionTypeFAT32LBA, 2048, 204800))

	mbr, err := ParseMBR(sector)
	require.NoError(t, err)
	require.Equal(t, uint16(0xAA55), mbr.ReadSignature())

	e := &mbr.PartitionEntries[0]
	require.Equal(t, uint8(0x80), e.BootIndicator)
	require.Equal(t, PartitionTypeFAT32LBA, e.PartitionType)
	require.Equal(t, uint32(2048), e.ReadStartLBA())
	require.Equal(t, uint32(204800), e.ReadTotalSectors())
}

func TestSingleFAT32PartitionRoundTrip(t *testing.T) {
	const (
		startLBA = 2048
		sizeLBA  = 204800
	)
	sector := mbrSector(mbrEntry(0x80, PartitionTypeFAT32LBA, startLBA, sizeLBA))

	table := ParsePartitionTable(sector, 0)

	require.Equal(t, SchemeMBR, table.Scheme)
	require.Equal(t, uint32(512), table.SectorSize)
	require.Len(t, table.Partitions, 1)

	p := table.Partitions[0]
	require.Equal(t, 1, p.Index)
	require.True(t, p.Bootable)
	require.Equal(t, uint8(0x0C), p.TypeCode)
	require.Equal(t, uint64(startLBA), p.StartLBA)
	require.Equal(t, uint64(startLBA+sizeLBA-1), p.EndLBA)
	require.Equal(t, uint64(sizeLBA), p.SizeLBA)
	require.Equal(t, uint64(sizeLBA)*512, p.SizeBytes)
	require.Equal(t, "FAT32 (LBA)", p.Type)
	require.Equal(t, "FAT32", p.Filesystem)
}

func TestEmptySlotsAreSkipped(t *testing.T) {
	sector := mbrSector(
		mbrEntry(0, PartitionTypeEmpty, 0, 0),
		mbrEntry(0, PartitionTypeLinux, 4096, 8192),
	)

	table := ParsePartitionTable(sector, 512)
	require.Len(t, table.Partitions, 1)
	require.Equal(t, 2, table.Partitions[0].Index)
	require.Equal(t, "Linux", table.Partitions[0].Type)
	require.Equal(t, "ext4", table.Partitions[0].Filesystem)
	require.False(t, table.Partitions[0].Bootable)
}

func TestUnknownSchemeOnGarbage(t *testing.T) {
	table := ParsePartitionTable(make([]byte, 1024), 512)

	require.Equal(t, SchemeUnknown, table.Scheme)
	require.Empty(t, table.Partitions)
	require.Len(t, table.Errors, 1)
	require.ErrorIs(t, table.Errors[0], ErrUnknownPartitionScheme)
}

func TestMBRPartitionNames(t *testing.T) {
	tests := []struct {
		typ  MBRPartition
		name string
	}{
		{PartitionTypeEmpty, "Empty"},
		{PartitionTypeFAT12, "FAT12"},
		{PartitionTypeNTFS, "NTFS/exFAT/HPFS"},
		{PartitionTypeLinuxSwap, "Linux Swap"},
		{PartitionTypeGPTProtective, "GPT Protective MBR"},
		{PartitionTypeEFISystem, "EFI System"},
		{MBRPartition(0x99), "Unknown (0x99)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.name, tt.typ.String())
	}
}

func TestExtractPartitionDataClipsToBuffer(t *testing.T) {
	diskData := make([]byte, 4096)
	for i := range diskData {
		diskData[i] = byte(i)
	}

	p := Partition{StartLBA: 4, SizeLBA: 100}
	data := ExtractPartitionData(diskData, p, 512)

	// Only four sectors fit after the start offset.
	require.Len(t, data, 4096-4*512)
	require.Equal(t, diskData[4*512:], data)
	require.LessOrEqual(t, uint64(len(data)), p.SizeLBA*512)
}

func TestExtractPartitionDataBeyondBuffer(t *testing.T) {
	data := ExtractPartitionData(make([]byte, 512), Partition{StartLBA: 10, SizeLBA: 1}, 512)
	require.Nil(t, data)
}

func TestExtractPartitionDataExact(t *testing.T) {
	diskData := make([]byte, 3*512)
	p := Partition{StartLBA: 1, SizeLBA: 2}

	data := ExtractPartitionData(diskData, p, 512)
	require.Len(t, data, 2*512)
}
