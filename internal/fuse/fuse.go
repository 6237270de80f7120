//go:build linux
// +build linux

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
package fuse

import (
	"context"
	"os"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/okvist/exhume/internal/fat"
)

// FatFS exposes a decoded FAT listing as a read-only filesystem. File
// contents are resolved lazily through the cluster chains of the decoded
// volume.
type FatFS struct {
	res *fat.Result
}

func (f *FatFS) Root() (fs.Node, error) {
	return &Dir{fs: f, entries: f.res.Root}, nil
}

// Dir serves one decoded directory level.
type Dir struct {
	fs      *FatFS
	entries []*fat.Entry
}

func (*Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	for _, e := range d.entries {
		if e.Name != name {
			continue
		}
		if e.IsDir {
			return &Dir{fs: d.fs, entries: e.Children}, nil
		}
		return &File{fs: d.fs, entry: e}, nil
	}
	return nil, fuse.ENOENT
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirEntries := make([]fuse.Dirent, 0, len(d.entries))
	for i, e := range d.entries {
		typ := fuse.DT_File
		if e.IsDir {
			typ = fuse.DT_Dir
		}
		dirEntries = append(dirEntries, fuse.Dirent{
			Inode: uint64(i + 1),
			Name:  e.Name,
			Type:  typ,
		})
	}
	return dirEntries, nil
}

// File serves the content of one regular file.
type File struct {
	fs      *FatFS
	entry   *fat.Entry
	content []byte
	loaded  bool
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = uint64(f.entry.Size)
	a.Mtime = time.Now()
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	if !f.loaded {
		f.content = f.fs.res.ReadFile(f.entry)
		f.loaded = true
	}

	offset := req.Offset
	if offset >= int64(len(f.content)) {
		resp.Data = []byte{}
		return nil
	}

	size := int64(req.Size)
	if offset+size > int64(len(f.content)) {
		size = int64(len(f.content)) - offset
	}
	resp.Data = f.content[offset : offset+size]
	return nil
}
