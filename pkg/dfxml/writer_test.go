package dfxml

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterProducesWellFormedDocument(t *testing.T) {
	var buf bytes.Buffer
	w := NewDFXMLWriter(&buf)

	err := w.WriteHeader(DFXMLHeader{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator: Creator{
			Package: "exhume",
			Version: "test",
		},
		Source: Source{
			ImageFilename: "evidence.E01",
			SectorSize:    512,
			ImageSize:     1 << 20,
		},
	})
	require.NoError(t, err)

	err = w.WriteFileObject(FileObject{
		Filename: "part1/file.txt",
		FileSize: 100,
		NameType: "r",
		ByteRuns: ByteRuns{
			Runs: []ByteRun{{Offset: 0, ImgOffset: 24576, Length: 100}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out := buf.String()
	require.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	require.Contains(t, out, `<dfxml xmloutputversion="1.0">`)
	require.Contains(t, out, "<dc:type>Filesystem Listing</dc:type>")
	require.Contains(t, out, "<image_filename>evidence.E01</image_filename>")
	require.Contains(t, out, `<byte_run offset="0" img_offset="24576" len="100">`)
	require.Contains(t, out, "</dfxml>")

	// Exactly one opening dfxml tag.
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("<dfxml")))
}
