package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/onsails/prosto/format"
)

const lz4BlockSize = 64 << 10

// lz4Levels maps prosto levels 0..9 onto lz4 compression levels. 0 is the fast mode.
var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// lz4ReaderPool pools frame readers; lz4.Reader maintains block buffers that benefit from reuse.
var lz4ReaderPool = sync.Pool{
	New: func() any {
		return lz4.NewReader(nil)
	},
}

// LZ4Compressor writes LZ4 frames (the lz4 command line format).
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Type implements Codec.
func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// RecommendedInputSize implements Compressor.
func (c LZ4Compressor) RecommendedInputSize() int {
	return lz4BlockSize
}

// NewWriter opens an LZ4 frame writing into dst.
//
// Levels <= 0 select lz4.Fast, 1..9 select lz4.Level1..Level9, higher values clamp to Level9.
func (c LZ4Compressor) NewWriter(dst io.Writer, level int) (StreamWriter, error) {
	level = min(max(level, 0), len(lz4Levels)-1)

	zw := lz4.NewWriter(dst)
	err := zw.Apply(
		lz4.CompressionLevelOption(lz4Levels[level]),
		lz4.BlockSizeOption(lz4.Block64Kb),
		lz4.ConcurrencyOption(1),
	)
	if err != nil {
		return nil, fmt.Errorf("configure lz4 writer: %w", err)
	}

	return zw, nil
}

// Decompress decompresses one LZ4 frame.
//
// Uses a pooled lz4.Reader for better performance.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr, _ := lz4ReaderPool.Get().(*lz4.Reader)
	defer lz4ReaderPool.Put(zr)
	zr.Reset(bytes.NewReader(data))

	decompressed, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return decompressed, nil
}
