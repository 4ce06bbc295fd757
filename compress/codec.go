package compress

import (
	"fmt"
	"io"

	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/format"
)

// StreamWriter is an open compression stream.
//
// Bytes written are compressed incrementally into the destination passed to
// Compressor.NewWriter. Flush forces buffered input out as compressed output without
// ending the frame. Close finalizes the frame; it never closes the destination.
type StreamWriter interface {
	io.Writer

	// Flush emits all buffered input as compressed bytes without ending the frame.
	Flush() error

	// Close finalizes the frame and writes any trailer. The writer must not be used afterwards.
	Close() error
}

// Compressor opens streaming compressors for one algorithm.
//
// Every StreamWriter returned by NewWriter writes synchronously: when Write, Flush or
// Close returns, everything the compressor produced so far is already in dst. The chunk
// encoder relies on this to read the compressed length between records.
type Compressor interface {
	// NewWriter opens a compression stream writing one self-contained frame into dst.
	//
	// The level is mapped onto the algorithm's own levels; out-of-range values are clamped.
	NewWriter(dst io.Writer, level int) (StreamWriter, error)

	// RecommendedInputSize is the input size the algorithm prefers per write.
	//
	// Callers buffer small writes up to this size before handing them to the stream.
	RecommendedInputSize() int
}

// Decompressor decompresses one whole frame.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
type Decompressor interface {
	// Decompress returns the original payload of a complete frame.
	//
	// Returns an error if data is corrupted, truncated, or produced by another algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions for one algorithm.
type Codec interface {
	Compressor
	Decompressor

	// Type reports the algorithm implemented by the codec.
	Type() format.CompressionType
}

// CompressionStats describes one compressed chunk.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of the payload before compression
	OriginalSize int64

	// CompressedSize is the size of the frame after compression
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
// Returns 0.0 when the original size is zero.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:   NewNoOpCompressor(),
	format.CompressionZstd:   NewZstdCompressor(),
	format.CompressionS2:     NewS2Compressor(),
	format.CompressionLZ4:    NewLZ4Compressor(),
	format.CompressionSnappy: NewSnappyCompressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Built-in codecs are stateless values and safe for concurrent use; the streams they
// open are not.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCodec, compressionType)
}
