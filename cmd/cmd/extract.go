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

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/okvist/exhume/internal/inspect"
)

func DefineExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "extract <image>",
		Short:        "Extract all files of every FAT partition to a directory",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunExtract,
	}

	cmd.Flags().StringP("dump", "d", "", "dump the decoded files to the specified directory")
	_ = cmd.MarkFlagRequired("dump")

	return cmd
}

func RunExtract(cmd *cobra.Command, args []string) error {
	dumpDir, _ := cmd.Flags().GetString("dump")

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

	fmt.Println("[INFO] Starting extraction...")
	fmt.Printf("[INFO] Source: \t%s\n", rep.Path)
	fmt.Printf("[INFO] Destination: \t%s\n", dumpDir)

	if err := inspect.Dump(afero.NewOsFs(), dumpDir, rep); err != nil {
		return err
	}

	fmt.Println("[INFO] Extraction completed!")
	return nil
}
