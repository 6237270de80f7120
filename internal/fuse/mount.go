package fuse

import (
	osutil "github.com/okvist/exhume/pkg/util/os"
)

// PrepareMountpoint makes sure the mountpoint exists and is an empty
// directory, creating it when missing. The returned bool reports whether
// the directory was created and should be removed after unmounting.
func PrepareMountpoint(mountpoint string) (bool, error) {
	return osutil.EnsureDir(mountpoint, true)
}
