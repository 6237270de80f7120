package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1KB"},
		{1536, "1.50KB"},
		{1 << 20, "1MB"},
		{3 << 30, "3GB"},
		{2 << 40, "2TB"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatBytes(tt.in))
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"512", 512},
		{"512B", 512},
		{"4KB", 4 << 10},
		{"4MB", 4 << 20},
		{"1.5GB", 3 << 29},
		{"2tb", 2 << 40},
		{" 8 MB ", 8 << 20},
	}
	for _, tt := range tests {
		got, err := ParseBytes(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseBytesRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "-4MB", "MB"} {
		_, err := ParseBytes(in)
		require.Error(t, err, in)
	}
}
