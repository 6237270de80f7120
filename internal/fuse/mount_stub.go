//go:build !linux
// +build !linux

package fuse

import (
	"errors"

	"github.com/okvist/exhume/internal/fat"
)

func Mount(mountpoint string, res *fat.Result) error {
	return errors.New("mounting is only supported on linux")
}
