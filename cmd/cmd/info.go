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
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/okvist/exhume/internal/ewf"
	"github.com/okvist/exhume/internal/inspect"
	"github.com/okvist/exhume/pkg/util/format"
)

// canonicalKeyOrder fixes the display order of known metadata keys;
// unrecognized keys are printed after these, sorted.
var canonicalKeyOrder = []string{
	ewf.KeyCaseNumber,
	ewf.KeyEvidenceNumber,
	ewf.KeyDescription,
	ewf.KeyExaminerName,
	ewf.KeyNotes,
	ewf.KeyAcquiredDate,
	ewf.KeySystemDate,
	ewf.KeyOperatingSystem,
	ewf.KeyPassword,
	ewf.KeyCompressionLevel,
}

func DefineInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "info <image>",
		Short:        "Show EWF metadata, volume geometry and hashes",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}
}

func RunInfo(cmd *cobra.Command, args []string) error {
	rep, err := inspect.Inspect(args[0], parseOptions(cmd))
	if err != nil {
		return err
	}
	defer rep.Close()

	img := rep.Image

	fmt.Printf("[INFO] Image: \t%s (%s)\n", rep.Path, format.FormatBytes(int64(rep.ImageSize)))
	if !img.Valid {
		fmt.Println("[WARN] Not a valid EWF image:")
		printErrors(img.Errors)
		return nil
	}

	fmt.Printf("[INFO] Sections: \t%d\n", len(img.Sections))
	for _, s := range img.Sections {
		fmt.Printf("  %-10s offset=%-10d size=%d\n", s.Type, s.Offset, s.Size)
	}

	if len(img.Metadata) > 0 {
		fmt.Println("[INFO] Case metadata:")
		printed := map[string]bool{}
		for _, key := range canonicalKeyOrder {
			if val, ok := img.Metadata[key]; ok {
				fmt.Printf("  %-18s %s\n", key+":", val)
				printed[key] = true
			}
		}
		var rest []string
		for key := range img.Metadata {
			if !printed[key] {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			fmt.Printf("  %-18s %s\n", key+":", img.Metadata[key])
		}
	}

	if vol := img.Volume; vol != nil {
		fmt.Println("[INFO] Volume geometry:")
		fmt.Printf("  media type:        0x%02X\n", vol.MediaType)
		fmt.Printf("  chunk count:       %d\n", vol.ChunkCount)
		fmt.Printf("  sectors per chunk: %d\n", vol.SectorsPerChunk)
		fmt.Printf("  bytes per sector:  %d\n", vol.BytesPerSector)
		fmt.Printf("  sector count:      %d\n", vol.SectorCount)
		fmt.Printf("  media size:        %s\n", format.FormatBytes(int64(vol.TotalBytes())))
	}

	if h := img.Hash; h != nil {
		fmt.Println("[INFO] Acquisition hashes:")
		if h.MD5 != "" {
			fmt.Printf("  md5:  %s\n", h.MD5)
		}
		if h.SHA1 != "" {
			fmt.Printf("  sha1: %s\n", h.SHA1)
		}
	}

	fmt.Printf("[INFO] Raw disk data: \t%s\n", format.FormatBytes(int64(len(img.RawDisk))))

	if len(img.Errors) > 0 {
		fmt.Printf("[WARN] %d decoding issue(s):\n", len(img.Errors))
		printErrors(img.Errors)
	}
	return nil
}

func printErrors(errs []error) {
	for _, err := range errs {
		fmt.Printf("  - %v\n", err)
	}
}
