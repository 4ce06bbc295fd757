package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/onsails/prosto/format"
)

const s2BlockSize = 128 << 10

type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 codec writing the S2 stream format.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Type implements Codec.
func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// RecommendedInputSize implements Compressor.
func (c S2Compressor) RecommendedInputSize() int {
	return s2BlockSize
}

// NewWriter opens an S2 stream writing into dst.
//
// Levels <= 1 use the default mode, 2..5 s2.WriterBetterCompression and 6+ s2.WriterBestCompression.
func (c S2Compressor) NewWriter(dst io.Writer, level int) (StreamWriter, error) {
	opts := []s2.WriterOption{
		s2.WriterConcurrency(1),
		s2.WriterBlockSize(s2BlockSize),
	}

	switch {
	case level >= 6:
		opts = append(opts, s2.WriterBestCompression())
	case level >= 2:
		opts = append(opts, s2.WriterBetterCompression())
	}

	return s2.NewWriter(dst, opts...), nil
}

// Decompress decompresses an S2 stream.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decompressed, err := io.ReadAll(s2.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return decompressed, nil
}
