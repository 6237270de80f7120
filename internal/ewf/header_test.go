package ewf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func parseHeader(payload []byte, opts ...Option) map[string]string {
	d := &decoder{inflate: decompressZlib}
	for _, opt := range opts {
		opt(d)
	}
	meta := make(map[string]string)
	d.decodeHeader(payload, meta)
	return meta
}

func TestHeaderAliasResolution(t *testing.T) {
	meta := parseHeader([]byte("c\tACME-1\ne\tJane\nfoo\tbar\n"))

	require.Equal(t, map[string]string{
		"case_number":   "ACME-1",
		"examiner_name": "Jane",
		"foo":           "bar",
	}, meta)
}

func TestHeaderCompressedPayload(t *testing.T) {
	payload := deflate(t, []byte("ev\t2024-117\nos\tWindows 10\n"))
	require.Equal(t, byte(0x78), payload[0])

	meta := parseHeader(payload)
	require.Equal(t, "2024-117", meta["evidence_number"])
	require.Equal(t, "Windows 10", meta["operating_system"])
}

func TestHeaderBogusZlibFallsBackToRaw(t *testing.T) {
	// Starts with the zlib marker byte but is not a valid stream; the raw
	// bytes are used as-is and the first line is garbage.
	payload := []byte("x\tjunk\nn\tSuspect laptop\n")
	require.Equal(t, byte(0x78), payload[0])

	meta := parseHeader(payload)
	require.Equal(t, "Suspect laptop", meta["description"])
	require.Equal(t, "junk", meta["x"])
}

func TestHeaderEqualsSeparator(t *testing.T) {
	meta := parseHeader([]byte("case=INC-9\nnotes=disk=sda raw\n"))

	require.Equal(t, "INC-9", meta["case_number"])
	// Values containing '=' survive the field rejoin.
	require.Equal(t, "disk=sda raw", meta["notes"])
}

func TestHeaderDropsEmptyKeysAndValues(t *testing.T) {
	meta := parseHeader([]byte("\tvalue\nkey\t\n\n  \t \nr\tbest\n"))

	require.Equal(t, map[string]string{"compression_level": "best"}, meta)
}

func TestHeaderLaterSectionsOverride(t *testing.T) {
	d := &decoder{inflate: decompressZlib}
	meta := make(map[string]string)
	d.decodeHeader([]byte("c\tfirst\n"), meta)
	d.decodeHeader([]byte("case\tsecond\n"), meta)

	require.Equal(t, "second", meta["case_number"])
}

func TestHeaderCRLFSplitting(t *testing.T) {
	meta := parseHeader([]byte("a\t2024-01-05\r\n\r\nm\t2024-01-06\r"))

	require.Equal(t, "2024-01-05", meta["acquired_date"])
	require.Equal(t, "2024-01-06", meta["system_date"])
}

func TestHeaderInvalidUTF8BecomesReplacement(t *testing.T) {
	meta := parseHeader([]byte("no\tbad\xff\xfebytes\n"))

	require.Contains(t, meta["notes"], "bad")
	require.Contains(t, meta["notes"], "�")
}

func TestWithInflaterOption(t *testing.T) {
	called := false
	fn := func(data []byte) ([]byte, error) {
		called = true
		return nil, errors.New("unavailable")
	}

	// The custom inflater fails, so the payload is parsed verbatim.
	meta := parseHeader([]byte("x\tstill parsed\n"), WithInflater(fn))
	require.True(t, called)
	require.Equal(t, "still parsed", meta["x"])
}

func TestCanonicalKey(t *testing.T) {
	require.Equal(t, "case_number", CanonicalKey("c"))
	require.Equal(t, "description", CanonicalKey("name"))
	require.Equal(t, "password", CanonicalKey("p"))
	require.Equal(t, "unknown_key", CanonicalKey("unknown_key"))
}
