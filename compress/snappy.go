package compress

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/onsails/prosto/format"
)

// snappyMaxBlockSize is the uncompressed block size of the snappy framing format.
const snappyMaxBlockSize = 65536

// SnappyCompressor writes the snappy framing format.
//
// Snappy has no compression levels; the level argument of NewWriter is ignored.
type SnappyCompressor struct{}

// Ensure SnappyCompressor implements Codec.
var _ Codec = (*SnappyCompressor)(nil)

// NewSnappyCompressor creates a new framed Snappy codec.
func NewSnappyCompressor() SnappyCompressor {
	return SnappyCompressor{}
}

// Type implements Codec.
func (s SnappyCompressor) Type() format.CompressionType {
	return format.CompressionSnappy
}

// RecommendedInputSize implements Compressor.
func (s SnappyCompressor) RecommendedInputSize() int {
	return snappyMaxBlockSize
}

// NewWriter opens a buffered snappy stream writing into dst.
func (s SnappyCompressor) NewWriter(dst io.Writer, _ int) (StreamWriter, error) {
	return snappy.NewBufferedWriter(dst), nil
}

// Decompress decompresses a framed snappy stream.
func (s SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decompressed, err := io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, errors.Wrap(err, "snappy decompression failed")
	}

	return decompressed, nil
}
