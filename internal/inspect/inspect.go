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

// Package inspect drives the decoding pipeline over one image file:
// EWF container -> partition table -> FAT listings, one per FAT partition.
package inspect

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/okvist/exhume/internal/disk"
	"github.com/okvist/exhume/internal/ewf"
	"github.com/okvist/exhume/internal/fat"
	"github.com/okvist/exhume/internal/fs"
	"github.com/okvist/exhume/internal/mmap"
)

// Options controls a pipeline run.
type Options struct {
	// SectorSize overrides the disk sector size; 0 uses the size reported
	// by the EWF volume section, falling back to 512.
	SectorSize uint32
	LogLevel   slog.Level
	LogFile    string
	DisableLog bool
}

// PartitionListing pairs a partition with its decoded FAT filesystem.
type PartitionListing struct {
	Partition disk.Partition
	FS        *fat.Result
}

// Report is the combined outcome of one pipeline run. Close releases the
// underlying image mapping; the decoded results reference it and must not
// be used afterwards.
type Report struct {
	Path      string
	ImageSize uint64
	Image     *ewf.ParseResult
	Table     *disk.PartitionTable
	Listings  []PartitionListing

	closer io.Closer
}

func (r *Report) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Inspect loads the image at path and runs the full decoding pipeline.
// Decoding problems are collected inside the returned report; the error
// return covers I/O failures only.
func Inspect(path string, opts Options) (*Report, error) {
	logger, logFile, err := setupLogger(opts.logFilePath(), opts.LogLevel)
	if err != nil {
		return nil, err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	data, closer, err := readImage(path)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Path:      path,
		ImageSize: uint64(len(data)),
		closer:    closer,
	}

	rep.Image = ewf.Parse(data)
	for _, err := range rep.Image.Errors {
		logger.Warn("ewf decoding issue", "err", err)
	}
	if !rep.Image.Valid {
		return rep, nil
	}
	logger.Info("ewf image decoded",
		"sections", len(rep.Image.Sections),
		"raw_disk_bytes", len(rep.Image.RawDisk))

	if len(rep.Image.RawDisk) == 0 {
		logger.Warn("image contains no sector data, skipping partition discovery")
		return rep, nil
	}

	sectorSize := opts.SectorSize
	if sectorSize == 0 && rep.Image.Volume != nil {
		sectorSize = rep.Image.Volume.BytesPerSector
	}

	rep.Table = disk.ParsePartitionTable(rep.Image.RawDisk, sectorSize)
	for _, err := range rep.Table.Errors {
		logger.Warn("partition decoding issue", "err", err)
	}
	logger.Info("partition table decoded",
		"scheme", rep.Table.Scheme.String(),
		"partitions", len(rep.Table.Partitions))

	for _, p := range rep.Table.Partitions {
		if !strings.HasPrefix(p.Filesystem, "FAT") {
			continue
		}

		partData := disk.ExtractPartitionData(rep.Image.RawDisk, p, rep.Table.SectorSize)
		res := fat.Parse(partData)
		for _, err := range res.Errors {
			logger.Warn("fat decoding issue", "partition", p.Index, "err", err)
		}
		if !res.Valid {
			logger.Warn("partition is not a decodable FAT volume", "partition", p.Index)
			continue
		}
		logger.Info("fat volume decoded",
			"partition", p.Index,
			"variant", res.Variant.String(),
			"root_entries", len(res.Root))

		rep.Listings = append(rep.Listings, PartitionListing{Partition: p, FS: res})
	}
	return rep, nil
}

func (o Options) logFilePath() string {
	if o.DisableLog {
		return ""
	}
	return o.LogFile
}

// readImage maps the image into memory, falling back to a plain read for
// sources that cannot be mapped (raw devices, pipes).
func readImage(path string) ([]byte, io.Closer, error) {
	if m, err := mmap.NewMmapFile(path); err == nil {
		return m.Data, m, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image file %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image file %q: %w", path, err)
	}
	return data, nil, nil
}

// WalkEntries visits every entry of the listing depth-first, parents
// before children.
func (l *PartitionListing) WalkEntries(fn func(e *fat.Entry)) {
	var walk func(entries []*fat.Entry)
	walk = func(entries []*fat.Entry) {
		for _, e := range entries {
			fn(e)
			walk(e.Children)
		}
	}
	walk(l.FS.Root)
}

// setupLogger initializes a slog.Logger writing to the given file, or
// discarding output when the path is empty.
func setupLogger(logFilePath string, minLevel slog.Level) (*slog.Logger, *os.File, error) {
	var writer io.Writer
	var file *os.File

	if logFilePath == "" {
		writer = io.Discard
	} else {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}

		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
		}
		writer = f
		file = f
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: minLevel,
	})
	return slog.New(handler), file, nil
}
