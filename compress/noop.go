package compress

import (
	"io"

	"github.com/onsails/prosto/format"
)

const noopInputSize = 64 << 10

// NoOpCompressor passes data through without compression.
//
// A "frame" of this codec is the raw concatenation of everything written. Useful for:
//   - Debugging chunk contents with ordinary tools
//   - Payloads that are already compressed
//   - Baseline measurements of the framing overhead
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type implements Codec.
func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// RecommendedInputSize implements Compressor.
func (c NoOpCompressor) RecommendedInputSize() int {
	return noopInputSize
}

// NewWriter returns a writer that copies its input into dst unchanged.
func (c NoOpCompressor) NewWriter(dst io.Writer, _ int) (StreamWriter, error) {
	return &noopWriter{dst: dst}, nil
}

// Decompress returns the input data directly without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

type noopWriter struct {
	dst    io.Writer
	closed bool
}

func (w *noopWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}

	return w.dst.Write(p)
}

func (w *noopWriter) Flush() error {
	return nil
}

func (w *noopWriter) Close() error {
	w.closed = true
	return nil
}
