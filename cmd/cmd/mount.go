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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okvist/exhume/internal/fuse"
	"github.com/okvist/exhume/internal/inspect"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <image>",
		Short: "Mount the FAT filesystem of an image read-only",
		Long: `The 'mount' command exposes the decoded directory tree of an image's
FAT partition through FUSE. The mount is read-only and is served until the
process receives an interrupt signal.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "directory where the filesystem will be mounted (default: derived from the image name)")
	cmd.Flags().Int("partition", 0, "partition index to mount (default: first FAT partition)")

	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	rep, err := inspect.Inspect(args[0], parseOptions(cmd))
	if err != nil {
		return err
	}
	defer rep.Close()

	if len(rep.Listings) == 0 {
		return fmt.Errorf("no decodable FAT partitions in %q", args[0])
	}

	partition, _ := cmd.Flags().GetInt("partition")
	listing := &rep.Listings[0]
	if partition != 0 {
		listing = nil
		for i := range rep.Listings {
			if rep.Listings[i].Partition.Index == partition {
				listing = &rep.Listings[i]
				break
			}
		}
		if listing == nil {
			return fmt.Errorf("partition %d is not a decodable FAT partition", partition)
		}
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = defaultMountpoint(args[0])
	}

	fmt.Printf("[INFO] Mounting partition %d at %s\n", listing.Partition.Index, mountpoint)
	return fuse.Mount(mountpoint, listing.FS)
}

// defaultMountpoint derives a mountpoint name from the image file name by
// stripping the extension.
func defaultMountpoint(imagePath string) string {
	baseName := filepath.Base(imagePath)
	ext := filepath.Ext(baseName)
	mountpoint := strings.TrimSuffix(baseName, ext)
	if ext == "" {
		mountpoint += "_mnt"
	}
	return mountpoint
}
