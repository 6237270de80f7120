//go:build windows
// +build windows

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
package fs

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// Open opens an image file, or a raw volume when the path uses the
// \\.\ device syntax. Raw volume reads must stay sector-aligned, which
// rawVolume.ReadAt takes care of.
func Open(path string) (File, error) {
	if !strings.HasPrefix(path, `\\.\`) {
		return os.Open(path)
	}

	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(path),
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	return &rawVolume{name: path, handle: handle}, nil
}

type rawVolume struct {
	name   string
	handle windows.Handle
	offset int64
}

func (d *rawVolume) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.offset)
	d.offset += int64(n)
	return n, err
}

// ReadAt performs a sector-aligned read covering the requested range and
// copies out the requested portion.
func (d *rawVolume) ReadAt(p []byte, off int64) (int, error) {
	const sectorSize = 512

	alignedOffset := off / sectorSize * sectorSize
	alignmentDiff := int(off - alignedOffset)
	alignedSize := ((len(p) + alignmentDiff + sectorSize - 1) / sectorSize) * sectorSize

	buf := make([]byte, alignedSize)

	var bytesRead uint32
	ov := new(windows.Overlapped)
	ov.Offset = uint32(alignedOffset)
	ov.OffsetHigh = uint32(alignedOffset >> 32)

	err := windows.ReadFile(d.handle, buf, &bytesRead, ov)
	if err != nil {
		if err == syscall.ERROR_IO_PENDING {
			err = windows.GetOverlappedResult(d.handle, ov, &bytesRead, true)
		}
		if err != nil {
			return 0, fmt.Errorf("aligned read failed: %w", err)
		}
	}

	n := copy(p, buf[alignmentDiff:])
	return n, nil
}

func (d *rawVolume) Stat() (os.FileInfo, error) {
	var size int64
	if err := windows.GetFileSizeEx(d.handle, &size); err != nil {
		return nil, fmt.Errorf("GetFileSizeEx failed for %q: %w", d.name, err)
	}
	return &volumeInfo{name: d.name, size: size}, nil
}

func (d *rawVolume) Close() error {
	return windows.CloseHandle(d.handle)
}

type volumeInfo struct {
	name string
	size int64
}

func (fi *volumeInfo) Name() string       { return fi.name }
func (fi *volumeInfo) Size() int64        { return fi.size }
func (fi *volumeInfo) Mode() os.FileMode  { return 0 }
func (fi *volumeInfo) ModTime() time.Time { return time.Time{} }
func (fi *volumeInfo) IsDir() bool        { return false }
func (fi *volumeInfo) Sys() any           { return nil }
