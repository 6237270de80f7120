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
	"fmt"
	"io"

	"github.com/okvist/exhume/internal/disk"
	"github.com/okvist/exhume/internal/env"
	"github.com/okvist/exhume/internal/fat"
	"github.com/okvist/exhume/pkg/dfxml"
)

// WriteDFXML writes the decoded listings as a DFXML report. Every file and
// directory becomes a fileobject; byte runs map file data to absolute image
// offsets inside the reconstructed disk.
func WriteDFXML(w io.Writer, rep *Report) error {
	sectorSize := uint32(disk.DefaultBlocksize)
	if rep.Table != nil {
		sectorSize = rep.Table.SectorSize
	}

	dw := dfxml.NewDFXMLWriter(w)

	err := dw.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: rep.Path,
			SectorSize:    int(sectorSize),
			ImageSize:     rep.ImageSize,
		},
	})
	if err != nil {
		return err
	}

	for i := range rep.Listings {
		listing := &rep.Listings[i]
		partOffset := listing.Partition.StartLBA * uint64(sectorSize)
		prefix := fmt.Sprintf("part%d", listing.Partition.Index)

		var walkErr error
		listing.WalkEntries(func(e *fat.Entry) {
			if walkErr != nil {
				return
			}
			walkErr = dw.WriteFileObject(fileObject(listing, e, prefix, partOffset))
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return dw.Close()
}

func fileObject(listing *PartitionListing, e *fat.Entry, prefix string, partOffset uint64) dfxml.FileObject {
	nameType := "r"
	if e.IsDir {
		nameType = "d"
	}

	obj := dfxml.FileObject{
		Filename: prefix + e.Path,
		FileSize: uint64(e.Size),
		NameType: nameType,
	}

	var logical uint64
	for _, ext := range listing.FS.FileExtents(e) {
		obj.ByteRuns.Runs = append(obj.ByteRuns.Runs, dfxml.ByteRun{
			Offset:    logical,
			ImgOffset: partOffset + ext.Offset,
			Length:    ext.Length,
		})
		logical += ext.Length
	}
	return obj
}
