package chunk

import (
	"fmt"

	"github.com/onsails/prosto/compress"
	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/format"
	"github.com/onsails/prosto/internal/options"
)

const (
	// DefaultCompression is the codec used when no compression option is given.
	DefaultCompression = format.CompressionZstd

	// DefaultLevel is the compression level used when no level option is given.
	DefaultLevel = compress.ZstdDefaultLevel
)

// EncoderConfig holds the settings of an Encoder. It is filled by EncoderOption values.
type EncoderConfig struct {
	codec          compress.Codec
	level          int
	flushThreshold int // 0 means the codec's recommended input size
	chunkCapacity  int
	syncFlush      bool
}

// NewEncoderConfig returns the default encoder configuration: zstd at level 3.
func NewEncoderConfig() *EncoderConfig {
	codec, _ := compress.GetCodec(DefaultCompression)

	return &EncoderConfig{
		codec: codec,
		level: DefaultLevel,
	}
}

// Compression reports the configured compression type.
func (c *EncoderConfig) Compression() format.CompressionType {
	return c.codec.Type()
}

// Level reports the configured compression level.
func (c *EncoderConfig) Level() int {
	return c.level
}

// FlushThreshold reports the pending-buffer size at which records are handed to the compressor.
func (c *EncoderConfig) FlushThreshold() int {
	if c.flushThreshold > 0 {
		return c.flushThreshold
	}

	return c.codec.RecommendedInputSize()
}

func (c *EncoderConfig) setCompression(cType format.CompressionType) error {
	codec, err := compress.GetCodec(cType)
	if err != nil {
		return err
	}
	c.codec = codec

	return nil
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithCompression selects the compression algorithm. The default is zstd.
func WithCompression(cType format.CompressionType) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setCompression(cType)
	})
}

// WithLevel sets the compression level.
//
// Each codec maps the integer onto its own levels and clamps out-of-range values;
// zstd takes the usual -5..22 range.
func WithLevel(level int) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.level = level
	})
}

// WithFlushThreshold sets how many serialized bytes accumulate before they are written
// into the compression stream. The default is the codec's recommended input size.
func WithFlushThreshold(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidThreshold, n)
		}
		c.flushThreshold = n

		return nil
	})
}

// WithChunkCapacity preallocates the output buffer of a chunk.
func WithChunkCapacity(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: negative chunk capacity %d", errs.ErrInvalidCapacity, n)
		}
		c.chunkCapacity = n

		return nil
	})
}

// WithSyncFlush makes every pending-buffer flush also flush the compression stream.
//
// CompressedLen then accounts for every record handed to the compressor, which keeps
// chunks closer to the caller's size target at some cost in ratio.
func WithSyncFlush(enabled bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.syncFlush = enabled
	})
}

// DecoderConfig holds the settings of a Decoder.
type DecoderConfig struct {
	codec compress.Codec
}

// NewDecoderConfig returns the default decoder configuration: zstd.
func NewDecoderConfig() *DecoderConfig {
	codec, _ := compress.GetCodec(DefaultCompression)

	return &DecoderConfig{codec: codec}
}

// Compression reports the configured compression type.
func (c *DecoderConfig) Compression() format.CompressionType {
	return c.codec.Type()
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithDecompression selects the algorithm the chunk was compressed with. The default is zstd.
func WithDecompression(cType format.CompressionType) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		codec, err := compress.GetCodec(cType)
		if err != nil {
			return err
		}
		c.codec = codec

		return nil
	})
}
