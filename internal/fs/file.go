package fs

import (
	"io"
	"os"
)

// File is the read surface the pipeline needs from an image source, be it
// a regular file or a raw device.
type File interface {
	io.ReadCloser
	io.ReaderAt
	Stat() (os.FileInfo, error)
}
