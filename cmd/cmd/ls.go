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
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okvist/exhume/internal/fat"
	"github.com/okvist/exhume/internal/inspect"
)

func DefineLsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ls <image>",
		Short:        "List the directory tree of every FAT partition",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunLs,
	}

	cmd.Flags().StringP("output", "o", "", "write a DFXML listing report to the specified file")
	cmd.Flags().Bool("show-hidden", false, "mark hidden and system entries")

	return cmd
}

func RunLs(cmd *cobra.Command, args []string) error {
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
	if len(rep.Listings) == 0 {
		fmt.Println("[WARN] No decodable FAT partitions found")
		return nil
	}

	showHidden, _ := cmd.Flags().GetBool("show-hidden")

	for i := range rep.Listings {
		listing := &rep.Listings[i]
		bs := listing.FS.BootSector

		fmt.Printf("[INFO] Partition %d: %s", listing.Partition.Index, listing.FS.Variant)
		if bs.VolumeLabel != "" {
			fmt.Printf(" (label %q)", bs.VolumeLabel)
		}
		fmt.Println()

		printTree(listing.FS.Root, 1, showHidden)

		if len(listing.FS.Errors) > 0 {
			fmt.Printf("[WARN] %d decoding issue(s):\n", len(listing.FS.Errors))
			printErrors(listing.FS.Errors)
		}
	}

	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile != "" {
		if err := writeReport(outputFile, rep); err != nil {
			return err
		}
		fmt.Printf("[INFO] Report saved to: \t%s\n", outputFile)
	}
	return nil
}

func printTree(entries []*fat.Entry, depth int, showHidden bool) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		var flags string
		if showHidden && (e.Hidden || e.System) {
			var set []string
			if e.Hidden {
				set = append(set, "hidden")
			}
			if e.System {
				set = append(set, "system")
			}
			flags = " [" + strings.Join(set, ",") + "]"
		}

		if e.IsDir {
			fmt.Printf("%s%s/%s\n", indent, e.Name, flags)
			printTree(e.Children, depth+1, showHidden)
		} else {
			fmt.Printf("%s%-40s %s%s\n", indent, e.Name, humanize.IBytes(uint64(e.Size)), flags)
		}
	}
}

func writeReport(path string, rep *inspect.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return inspect.WriteDFXML(f, rep)
}
