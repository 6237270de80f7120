//go:build windows
// +build windows

package mmap

import "os"

// MmapFile falls back to a plain read on Windows; Data holds the full file
// contents.
type MmapFile struct {
	Data []byte
}

func NewMmapFile(filePath string) (*MmapFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return &MmapFile{Data: data}, nil
}

func (mr *MmapFile) Close() error {
	mr.Data = nil
	return nil
}
