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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okvist/exhume/internal/disk"
	"github.com/okvist/exhume/internal/inspect"
)

func DefinePartitionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "partitions <image>",
		Short:        "Show the partition table of the reconstructed disk",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunPartitions,
	}
}

func RunPartitions(cmd *cobra.Command, args []string) error {
	rep, err := inspect.Inspect(args[0], parseOptions(cmd))
	if err != nil {
		return err
	}
	defer rep.Close()

	if !rep.Image.Valid {
		fmt.Println("[WARN] Not a valid EWF image:")
		printErrors(rep.Image.Errors)
		return nil
	}
	if rep.Table == nil {
		fmt.Println("[WARN] Image contains no sector data")
		return nil
	}

	table := rep.Table
	fmt.Printf("[INFO] Partition scheme: \t%s\n", table.Scheme)
	fmt.Printf("[INFO] Sector size: \t%d\n", table.SectorSize)
	if table.DiskGUID != "" {
		fmt.Printf("[INFO] Disk GUID: \t%s\n", table.DiskGUID)
	}

	for _, p := range table.Partitions {
		fmt.Printf("\nPartition %d: %s\n", p.Index, p.Type)
		if table.Scheme == disk.SchemeMBR {
			fmt.Printf("  type code:  0x%02X\n", p.TypeCode)
			fmt.Printf("  bootable:   %v\n", p.Bootable)
		} else {
			fmt.Printf("  type guid:  %s\n", p.TypeGUID)
			fmt.Printf("  guid:       %s\n", p.GUID)
			if p.Name != "" {
				fmt.Printf("  name:       %s\n", p.Name)
			}
		}
		fmt.Printf("  lba range:  %d - %d (%d sectors)\n", p.StartLBA, p.EndLBA, p.SizeLBA)
		fmt.Printf("  size:       %s\n", humanize.IBytes(p.SizeBytes))
		if p.Filesystem != "" {
			fmt.Printf("  filesystem: %s\n", p.Filesystem)
		}
	}

	if len(table.Errors) > 0 {
		fmt.Printf("\n[WARN] %d decoding issue(s):\n", len(table.Errors))
		printErrors(table.Errors)
	}
	return nil
}
