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
package inspect

import (
	"bytes"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/okvist/exhume/internal/fat"
	"github.com/okvist/exhume/pkg/pbar"
	ioutil "github.com/okvist/exhume/pkg/util/io"
)

// Dump writes every regular file of the report's listings below dumpDir on
// fsys, mirroring the directory structure of each partition.
func Dump(fsys afero.Fs, dumpDir string, rep *Report) error {
	var total int64
	for i := range rep.Listings {
		rep.Listings[i].WalkEntries(func(e *fat.Entry) {
			if !e.IsDir {
				total += int64(e.Size)
			}
		})
	}

	bar := pbar.NewProgressBarState(total)
	defer bar.Finish()

	for i := range rep.Listings {
		listing := &rep.Listings[i]
		prefix := fmt.Sprintf("part%d", listing.Partition.Index)

		var walkErr error
		listing.WalkEntries(func(e *fat.Entry) {
			if walkErr != nil {
				return
			}
			target := path.Join(dumpDir, prefix, e.Path)

			if e.IsDir {
				walkErr = fsys.MkdirAll(target, 0755)
				return
			}

			if err := fsys.MkdirAll(path.Dir(target), 0755); err != nil {
				walkErr = err
				return
			}

			content := listing.FS.ReadFile(e)
			if err := ioutil.CopyFile(fsys, target, bytes.NewReader(content)); err != nil {
				walkErr = err
				return
			}

			bar.ProcessedBytes += int64(len(content))
			bar.FilesWritten++
			bar.Render(false)
		})
		if walkErr != nil {
			return walkErr
		}
	}

	bar.Render(true)
	return nil
}
