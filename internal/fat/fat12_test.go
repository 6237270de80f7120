package fat

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFAT12Volume assembles a floppy-sized FAT12 partition holding one
// file that spans clusters 2 and 3.
//
// Geometry: 512-byte sectors, 1 sector per cluster, 1 reserved sector,
// 1 FAT of 1 sector, 16 root entries (1 sector), 64 total sectors. The
// data region starts at sector 3.
func buildFAT12Volume(t *testing.T) []byte {
	t.Helper()

	vol := make([]byte, 64*512)
	binary.LittleEndian.PutUint16(vol[11:], 512)
	vol[13] = 1
	binary.LittleEndian.PutUint16(vol[14:], 1)
	vol[16] = 1
	binary.LittleEndian.PutUint16(vol[17:], 16)
	binary.LittleEndian.PutUint16(vol[19:], 64)
	binary.LittleEndian.PutUint16(vol[22:], 1)
	copy(vol[fat1xLabelOffset:], "FLOPPY     ")
	copy(vol[fat1xFSTypeOffset:], "FAT12   ")
	vol[510] = 0x55
	vol[511] = 0xAA

	// 12-bit FAT entries: cluster 2 -> 3, cluster 3 -> end of chain.
	fatRegion := vol[512:]
	fatRegion[3] = 0x03
	fatRegion[4] = 0xF0
	fatRegion[5] = 0xFF

	// Fixed root directory region at sector 2.
	root := vol[2*512:]
	copy(root, shortEntry("B", "BIN", 0x20, 2, 600))

	// Clusters 2 and 3 at sectors 3 and 4.
	for i := 3 * 512; i < 4*512; i++ {
		vol[i] = 0x11
	}
	for i := 4 * 512; i < 5*512; i++ {
		vol[i] = 0x22
	}
	return vol
}

func TestParseFAT12Volume(t *testing.T) {
	res := Parse(buildFAT12Volume(t))

	require.True(t, res.Valid)
	require.Equal(t, FAT12, res.Variant)
	require.Equal(t, "FLOPPY", res.BootSector.VolumeLabel)
	require.Equal(t, "FAT12", res.BootSector.FSType)
	require.Equal(t, uint32(0), res.BootSector.RootCluster)

	require.Len(t, res.Root, 1)
	file := res.Root[0]
	require.Equal(t, "B.BIN", file.Name)
	require.Equal(t, uint32(600), file.Size)
}

func TestFAT12ChainFollowsPackedEntries(t *testing.T) {
	res := Parse(buildFAT12Volume(t))

	content := res.ReadFile(res.Root[0])
	require.Len(t, content, 600)
	require.Equal(t, byte(0x11), content[0])
	require.Equal(t, byte(0x11), content[511])
	require.Equal(t, byte(0x22), content[512])
}

func TestFAT12EntryLookup(t *testing.T) {
	res := Parse(buildFAT12Volume(t))

	next, eoc, ok := res.vol.fatEntry(2)
	require.True(t, ok)
	require.False(t, eoc)
	require.Equal(t, uint32(3), next)

	val, eoc, ok := res.vol.fatEntry(3)
	require.True(t, ok)
	require.True(t, eoc)
	require.Equal(t, uint32(0xFFF), val)
}

func TestFAT16VariantDetermination(t *testing.T) {
	// 1 reserved + 16 FAT sectors + 5000 data sectors lands between the
	// FAT12 and FAT32 thresholds.
	vol := make([]byte, 18*512)
	binary.LittleEndian.PutUint16(vol[11:], 512)
	vol[13] = 1
	binary.LittleEndian.PutUint16(vol[14:], 1)
	vol[16] = 1
	binary.LittleEndian.PutUint16(vol[17:], 0)
	binary.LittleEndian.PutUint16(vol[19:], 5017)
	binary.LittleEndian.PutUint16(vol[22:], 16)
	vol[510] = 0x55
	vol[511] = 0xAA

	res := Parse(vol)
	require.True(t, res.Valid)
	require.Equal(t, FAT16, res.Variant)
	require.Empty(t, res.Root)
}

func TestDeepRecursionIsCapped(t *testing.T) {
	// A directory whose first entry points back at its own cluster would
	// nest forever without the depth cap.
	vol := buildFAT32Volume(t)
	loop := clusterData(vol, 5)
	copy(loop, shortEntry("LOOP", "", attrDirectory, 5, 0))
	setFAT32Entry(vol, 5, fat32EOC)
	copy(clusterData(vol, 2)[5*dirEntrySize:], shortEntry("LOOP", "", attrDirectory, 5, 0))

	res := Parse(vol)
	require.True(t, res.Valid)

	depth := 0
	e := res.Root[3]
	for e != nil {
		require.Equal(t, "LOOP", e.Name)
		depth++
		require.LessOrEqual(t, depth, maxDirDepth+1)
		if len(e.Children) == 0 {
			break
		}
		e = e.Children[0]
	}
	require.LessOrEqual(t, depth, maxDirDepth+1)
}
