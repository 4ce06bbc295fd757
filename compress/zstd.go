package compress

import "github.com/onsails/prosto/format"

// zstdBlockSizeMax is ZSTD_BLOCKSIZE_MAX, the value libzstd reports from ZSTD_CStreamInSize.
const zstdBlockSizeMax = 1 << 17

// Zstd level bounds accepted by libzstd. Negative levels select the fast strategies.
const (
	ZstdMinLevel     = -5
	ZstdMaxLevel     = 22
	ZstdDefaultLevel = 3
)

// ZstdCompressor provides streaming Zstandard frames.
//
// This is the default codec of prosto. Chunks are single zstd frames and can be read by
// any zstd implementation, for example `zstd -d`.
//
// Two backends exist:
//   - pure Go (github.com/klauspost/compress/zstd), the default
//   - cgo libzstd (github.com/valyala/gozstd), selected with the `gozstd` build tag
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec.
//
// Example:
//
//	codec := NewZstdCompressor()
//	w, err := codec.NewWriter(&buf, 5)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type implements Codec.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

// RecommendedInputSize implements Compressor.
func (c ZstdCompressor) RecommendedInputSize() int {
	return zstdBlockSizeMax
}

func clampZstdLevel(level int) int {
	switch {
	case level < ZstdMinLevel:
		return ZstdMinLevel
	case level > ZstdMaxLevel:
		return ZstdMaxLevel
	default:
		return level
	}
}
