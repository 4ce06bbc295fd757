package pipeline

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/compress"
	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/format"
	"github.com/onsails/prosto/internal/options"
)

// DefaultChunkSize is the compressed size at which a chunk is sealed when no
// WithChunkSize option is given.
const DefaultChunkSize = 256 * 1024

// Config holds the settings shared by the actor stages and the sequence transforms.
type Config struct {
	chunkSize   int
	level       int
	compression format.CompressionType
	log         logrus.Ext1FieldLogger
	metrics     *Metrics
}

// NewConfig returns the default configuration: zstd level 3, 256 KiB chunks, no logging
// and no metrics.
func NewConfig() *Config {
	return &Config{
		chunkSize:   DefaultChunkSize,
		level:       chunk.DefaultLevel,
		compression: chunk.DefaultCompression,
		log:         discardLogger(),
	}
}

// ChunkSize reports the compressed size at which chunks are sealed.
func (c *Config) ChunkSize() int {
	return c.chunkSize
}

// Level reports the compression level.
func (c *Config) Level() int {
	return c.level
}

// Compression reports the compression algorithm.
func (c *Config) Compression() format.CompressionType {
	return c.compression
}

func (c *Config) encoderOptions() []chunk.EncoderOption {
	return []chunk.EncoderOption{
		chunk.WithCompression(c.compression),
		chunk.WithLevel(c.level),
	}
}

func (c *Config) decoderOptions() []chunk.DecoderOption {
	return []chunk.DecoderOption{
		chunk.WithDecompression(c.compression),
	}
}

// Option configures a stage or transform.
type Option = options.Option[*Config]

// WithChunkSize sets the compressed size at which a chunk is sealed.
//
// The size is checked after each whole record, so a chunk may exceed it by up to one
// record. A size of 0 seals a chunk after every record.
func WithChunkSize(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidChunkSize, n)
		}
		c.chunkSize = n

		return nil
	})
}

// WithLevel sets the compression level. See chunk.WithLevel.
func WithLevel(level int) Option {
	return options.NoError(func(c *Config) {
		c.level = level
	})
}

// WithCompression selects the compression algorithm. Both ends of a pipeline must agree.
func WithCompression(cType format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(cType); err != nil {
			return err
		}
		c.compression = cType

		return nil
	})
}

// WithLogger sets the logger. Stages log chunk boundaries at debug level and the end of
// their input at trace level. Both *logrus.Logger and *logrus.Entry are accepted.
func WithLogger(log logrus.Ext1FieldLogger) Option {
	return options.NoError(func(c *Config) {
		if log == nil {
			log = discardLogger()
		}
		c.log = log
	})
}

// WithMetrics sets the collectors updated by the stage or transform.
func WithMetrics(m *Metrics) Option {
	return options.NoError(func(c *Config) {
		c.metrics = m
	})
}

func newConfig(opts []Option) (*Config, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func discardLogger() logrus.Ext1FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}
