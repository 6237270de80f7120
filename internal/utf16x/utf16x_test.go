package utf16x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeLE(t *testing.T) {
	s, err := DecodeLE([]byte{'f', 0, 'a', 0, 't', 0})
	require.NoError(t, err)
	require.Equal(t, "fat", s)
}

func TestDecodeLECutsAtNUL(t *testing.T) {
	s, err := DecodeLE([]byte{'o', 0, 'k', 0, 0, 0, 'x', 0})
	require.NoError(t, err)
	require.Equal(t, "ok", s)
}

func TestDecodeLEOddLength(t *testing.T) {
	s, err := DecodeLE([]byte{'a', 0, 'b'})
	require.NoError(t, err)
	require.Equal(t, "a", s)
}

func TestDecodeLEEmpty(t *testing.T) {
	s, err := DecodeLE(nil)
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestDecodeLESurrogatePair(t *testing.T) {
	// U+1F600 as a UTF-16LE surrogate pair.
	s, err := DecodeLE([]byte{0x3D, 0xD8, 0x00, 0xDE})
	require.NoError(t, err)
	require.Equal(t, "\U0001F600", s)
}
