package inspect

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/okvist/exhume/internal/disk"
	"github.com/okvist/exhume/internal/fat"
)

// buildTestDisk assembles a 65-sector disk: an MBR with one bootable FAT12
// partition at LBA 1, followed by a FAT12 volume holding /B.BIN (600
// bytes, clusters 2+3).
func buildTestDisk(t *testing.T) []byte {
	t.Helper()

	diskData := make([]byte, 65*512)

	// MBR slot 0.
	entry := diskData[446:]
	entry[0] = 0x80
	entry[4] = byte(disk.PartitionTypeFAT12)
	binary.LittleEndian.PutUint32(entry[8:], 1)
	binary.LittleEndian.PutUint32(entry[12:], 64)
	diskData[510] = 0x55
	diskData[511] = 0xAA

	vol := diskData[512:]
	binary.LittleEndian.PutUint16(vol[11:], 512)
	vol[13] = 1
	binary.LittleEndian.PutUint16(vol[14:], 1)
	vol[16] = 1
	binary.LittleEndian.PutUint16(vol[17:], 16)
	binary.LittleEndian.PutUint16(vol[19:], 64)
	binary.LittleEndian.PutUint16(vol[22:], 1)
	vol[510] = 0x55
	vol[511] = 0xAA

	// FAT12: cluster 2 -> 3, cluster 3 -> end of chain.
	fatRegion := vol[512:]
	fatRegion[3] = 0x03
	fatRegion[4] = 0xF0
	fatRegion[5] = 0xFF

	// Root directory entry for B.BIN.
	root := vol[2*512:]
	copy(root[0:8], "B       ")
	copy(root[8:11], "BIN")
	root[11] = 0x20
	binary.LittleEndian.PutUint16(root[26:], 2)
	binary.LittleEndian.PutUint32(root[28:], 600)

	for i := 3 * 512; i < 5*512; i++ {
		vol[i] = 0xAB
	}
	return diskData
}

// buildTestImage wraps a disk into a minimal single-segment EWF file.
func buildTestImage(diskData []byte) []byte {
	img := make([]byte, 13)
	copy(img, []byte{0x45, 0x56, 0x46, 0x09, 0x0D, 0x0A, 0xFF, 0x00})

	appendSection := func(typ string, payload []byte) {
		desc := make([]byte, 76)
		copy(desc, typ)
		binary.LittleEndian.PutUint64(desc[24:32], uint64(max(len(payload), 76)))
		img = append(img, desc...)
		img = append(img, payload...)
	}
	appendSection("sectors", diskData)
	appendSection("done", nil)
	return img
}

func writeTestImage(t *testing.T, img []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "evidence.E01")
	require.NoError(t, os.WriteFile(path, img, 0644))
	return path
}

func TestInspectPipeline(t *testing.T) {
	path := writeTestImage(t, buildTestImage(buildTestDisk(t)))

	rep, err := Inspect(path, Options{DisableLog: true})
	require.NoError(t, err)
	defer rep.Close()

	require.True(t, rep.Image.Valid)
	require.Len(t, rep.Image.RawDisk, 65*512)

	require.NotNil(t, rep.Table)
	require.Equal(t, disk.SchemeMBR, rep.Table.Scheme)
	require.Len(t, rep.Table.Partitions, 1)
	require.Equal(t, "FAT12", rep.Table.Partitions[0].Filesystem)

	require.Len(t, rep.Listings, 1)
	listing := rep.Listings[0]
	require.Len(t, listing.FS.Root, 1)
	require.Equal(t, "B.BIN", listing.FS.Root[0].Name)
	require.Equal(t, uint32(600), listing.FS.Root[0].Size)
}

func TestInspectInvalidImage(t *testing.T) {
	path := writeTestImage(t, make([]byte, 1024))

	rep, err := Inspect(path, Options{DisableLog: true})
	require.NoError(t, err)
	defer rep.Close()

	require.False(t, rep.Image.Valid)
	require.Nil(t, rep.Table)
	require.Empty(t, rep.Listings)
}

func TestDumpWritesFiles(t *testing.T) {
	path := writeTestImage(t, buildTestImage(buildTestDisk(t)))

	rep, err := Inspect(path, Options{DisableLog: true})
	require.NoError(t, err)
	defer rep.Close()

	fsys := afero.NewMemMapFs()
	require.NoError(t, Dump(fsys, "out", rep))

	content, err := afero.ReadFile(fsys, "out/part1/B.BIN")
	require.NoError(t, err)
	require.Len(t, content, 600)
	require.Equal(t, byte(0xAB), content[0])
}

func TestWriteDFXMLReport(t *testing.T) {
	path := writeTestImage(t, buildTestImage(buildTestDisk(t)))

	rep, err := Inspect(path, Options{DisableLog: true})
	require.NoError(t, err)
	defer rep.Close()

	var buf bytes.Buffer
	require.NoError(t, WriteDFXML(&buf, rep))

	out := buf.String()
	require.Contains(t, out, "<dfxml xmloutputversion=\"1.0\">")
	require.Contains(t, out, "<filename>part1/B.BIN</filename>")
	require.Contains(t, out, "<filesize>600</filesize>")
	require.Contains(t, out, "byte_run")
}

func TestWalkEntriesVisitsAll(t *testing.T) {
	path := writeTestImage(t, buildTestImage(buildTestDisk(t)))

	rep, err := Inspect(path, Options{DisableLog: true})
	require.NoError(t, err)
	defer rep.Close()

	var names []string
	rep.Listings[0].WalkEntries(func(e *fat.Entry) {
		names = append(names, e.Name)
	})
	require.Equal(t, []string{"B.BIN"}, names)
}
