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

// Package fat walks FAT12, FAT16 and FAT32 filesystems found inside a
// partition byte slice. It decodes the boot sector, follows cluster chains
// through the file allocation table and builds the recursive directory
// listing, including long filenames. All traversal is bounded so that a
// crafted or corrupt volume cannot loop or recurse without limit.
package fat

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// maxChainClusters caps the number of clusters followed per chain.
	maxChainClusters = 10000
	// maxDirDepth caps directory recursion.
	maxDirDepth = 10

	dirEntrySize = 32
)

var (
	ErrInvalidBootSector     = errors.New("invalid FAT boot sector")
	ErrTruncated             = errors.New("truncated data")
	ErrUnsupportedFilesystem = errors.New("unsupported filesystem")
)

// End-of-chain sentinels per variant.
const (
	fat12EOC = 0xFF8
	fat16EOC = 0xFFF8
	fat32EOC = 0x0FFFFFF8
)

// Variant identifies the FAT flavor, determined by cluster count.
type Variant int

const (
	VariantUnknown Variant = iota
	FAT12
	FAT16
	FAT32
)

func (v Variant) String() string {
	switch v {
	case FAT12:
		return "FAT12"
	case FAT16:
		return "FAT16"
	case FAT32:
		return "FAT32"
	default:
		return "Unknown"
	}
}

// Entry is one file or directory of the decoded listing. Children is
// non-nil only for directories whose contents could be walked.
type Entry struct {
	Name      string // resolved name: long name when present, else SHORT.EXT
	ShortName string
	Extension string
	IsDir     bool
	Hidden    bool
	System    bool
	Size      uint32 // 0 for directories
	Cluster   uint32
	Children  []*Entry
	Path      string // slash-joined path from the partition root
}

// Extent is a contiguous byte range within the partition.
type Extent struct {
	Offset uint64
	Length uint64
}

// Result is the outcome of decoding one FAT partition. Valid reports
// whether the boot sector was accepted; Errors lists traversal problems
// that did not stop the walk.
type Result struct {
	Valid      bool
	Variant    Variant
	BootSector BootSector
	Root       []*Entry
	Errors     []error

	vol *volume
}

// volume carries the decoded geometry needed to resolve clusters to byte
// ranges after parsing.
type volume struct {
	data              []byte
	fat               []byte
	variant           Variant
	bytesPerSector    uint32
	sectorsPerCluster uint32
	firstDataSector   uint64
}

// Parse decodes the FAT filesystem at the start of a partition. It never
// panics on malformed input; a rejected boot sector yields Valid=false and
// traversal problems are collected into Errors with partial results kept.
func Parse(partition []byte) *Result {
	res := &Result{}

	bs, err := parseBootSector(partition)
	if err != nil {
		res.Errors = append(res.Errors, err)
		return res
	}
	res.BootSector = bs

	if bs.BytesPerSector == 0 || bs.SectorsPerCluster == 0 {
		res.Errors = append(res.Errors,
			fmt.Errorf("%w: boot sector reports zero sector or cluster size", ErrUnsupportedFilesystem))
		return res
	}
	res.Valid = true

	bps := uint64(bs.BytesPerSector)
	rootDirSectors := (uint64(bs.RootEntryCount)*dirEntrySize + bps - 1) / bps
	fatSectors := uint64(bs.NumFATs) * uint64(bs.SectorsPerFAT)

	dataSectors := int64(bs.TotalSectors) - int64(bs.ReservedSectors) - int64(fatSectors) - int64(rootDirSectors)
	if dataSectors < 0 {
		dataSectors = 0
	}
	clusterCount := uint64(dataSectors) / uint64(bs.SectorsPerCluster)

	switch {
	case clusterCount < 4085:
		res.Variant = FAT12
	case clusterCount < 65525:
		res.Variant = FAT16
	default:
		res.Variant = FAT32
	}

	fatStart := uint64(bs.ReservedSectors) * bps
	fatLen := uint64(bs.SectorsPerFAT) * bps
	if fatStart+fatLen > uint64(len(partition)) {
		res.Errors = append(res.Errors,
			fmt.Errorf("%w: FAT region [%d, %d) exceeds the partition", ErrTruncated, fatStart, fatStart+fatLen))
		return res
	}

	vol := &volume{
		data:              partition,
		fat:               partition[fatStart : fatStart+fatLen],
		variant:           res.Variant,
		bytesPerSector:    uint32(bs.BytesPerSector),
		sectorsPerCluster: uint32(bs.SectorsPerCluster),
		firstDataSector:   uint64(bs.ReservedSectors) + fatSectors + rootDirSectors,
	}
	res.vol = vol

	var rootData []byte
	if res.Variant == FAT32 {
		rootData = vol.readClusterChain(bs.RootCluster)
	} else {
		rootStart := (uint64(bs.ReservedSectors) + fatSectors) * bps
		rootLen := uint64(bs.RootEntryCount) * dirEntrySize
		if rootStart+rootLen > uint64(len(partition)) {
			res.Errors = append(res.Errors,
				fmt.Errorf("%w: root directory region [%d, %d) exceeds the partition",
					ErrTruncated, rootStart, rootStart+rootLen))
			return res
		}
		rootData = partition[rootStart : rootStart+rootLen]
	}

	res.Root = vol.decodeDirectory(rootData, "", 0)
	return res
}

// clusterExtent returns the byte range of cluster c within the partition
// and whether that range fits the buffer.
func (v *volume) clusterExtent(c uint32) (offset, size uint64, ok bool) {
	size = uint64(v.sectorsPerCluster) * uint64(v.bytesPerSector)
	offset = v.firstDataSector*uint64(v.bytesPerSector) + uint64(c-2)*size
	return offset, size, offset+size <= uint64(len(v.data))
}

// fatEntry looks up the next-cluster value for c. ok is false when the
// lookup falls outside the FAT region.
func (v *volume) fatEntry(c uint32) (next uint32, eoc bool, ok bool) {
	switch v.variant {
	case FAT32:
		off := uint64(c) * 4
		if off+4 > uint64(len(v.fat)) {
			return 0, false, false
		}
		val := binary.LittleEndian.Uint32(v.fat[off:]) & 0x0FFFFFFF
		return val, val >= fat32EOC, true
	case FAT16:
		off := uint64(c) * 2
		if off+2 > uint64(len(v.fat)) {
			return 0, false, false
		}
		val := uint32(binary.LittleEndian.Uint16(v.fat[off:]))
		return val, val >= fat16EOC, true
	default: // FAT12: 12-bit entries packed across byte pairs
		off := uint64(c) + uint64(c)/2
		if off+2 > uint64(len(v.fat)) {
			return 0, false, false
		}
		val := uint32(binary.LittleEndian.Uint16(v.fat[off:]))
		if c%2 == 0 {
			val &= 0x0FFF
		} else {
			val >>= 4
		}
		return val, val >= fat12EOC, true
	}
}

// walkChain visits the cluster chain starting at start, calling fn for
// every cluster until end-of-chain, an invalid cluster, or the step cap.
// fn returning false stops the walk.
func (v *volume) walkChain(start uint32, fn func(c uint32) bool) {
	c := start
	for steps := 0; steps < maxChainClusters; steps++ {
		if c < 2 {
			return
		}
		if !fn(c) {
			return
		}
		next, eoc, ok := v.fatEntry(c)
		if !ok || eoc {
			return
		}
		c = next
	}
}

// readClusterChain concatenates the payloads of a cluster chain. Clusters
// whose byte range falls outside the partition are skipped without
// terminating the chain.
func (v *volume) readClusterChain(start uint32) []byte {
	var out []byte
	v.walkChain(start, func(c uint32) bool {
		if off, size, ok := v.clusterExtent(c); ok {
			out = append(out, v.data[off:off+size]...)
		}
		return true
	})
	return out
}

// ReadFile returns the content bytes of e. Files are clamped to the size
// recorded in the directory entry; directories yield the raw chain bytes.
func (r *Result) ReadFile(e *Entry) []byte {
	if r.vol == nil || e.Cluster < 2 {
		return nil
	}
	data := r.vol.readClusterChain(e.Cluster)
	if !e.IsDir && uint64(e.Size) < uint64(len(data)) {
		data = data[:e.Size]
	}
	return data
}

// FileExtents returns the byte ranges of e within the partition, with
// adjacent clusters merged. For files the total length is clamped to the
// entry size.
func (r *Result) FileExtents(e *Entry) []Extent {
	if r.vol == nil || e.Cluster < 2 {
		return nil
	}

	var extents []Extent
	remaining := uint64(e.Size)
	r.vol.walkChain(e.Cluster, func(c uint32) bool {
		off, size, ok := r.vol.clusterExtent(c)
		if !ok {
			return true
		}
		if !e.IsDir {
			if remaining == 0 {
				return false
			}
			if size > remaining {
				size = remaining
			}
			remaining -= size
		}
		if n := len(extents); n > 0 && extents[n-1].Offset+extents[n-1].Length == off {
			extents[n-1].Length += size
		} else {
			extents = append(extents, Extent{Offset: off, Length: size})
		}
		return true
	})
	return extents
}
