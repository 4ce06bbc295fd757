//go:build cgo && gozstd

package compress

import (
	"fmt"
	"io"

	"github.com/valyala/gozstd"
)

// gozstdWriter releases the C stream on Close.
type gozstdWriter struct {
	zw *gozstd.Writer
}

func (w *gozstdWriter) Write(p []byte) (int, error) {
	if w.zw == nil {
		return 0, io.ErrClosedPipe
	}

	return w.zw.Write(p)
}

func (w *gozstdWriter) Flush() error {
	if w.zw == nil {
		return io.ErrClosedPipe
	}

	return w.zw.Flush()
}

func (w *gozstdWriter) Close() error {
	if w.zw == nil {
		return nil
	}

	err := w.zw.Close()
	w.zw.Release()
	w.zw = nil

	return err
}

// NewWriter opens a libzstd frame writing into dst at the given libzstd level.
func (c ZstdCompressor) NewWriter(dst io.Writer, level int) (StreamWriter, error) {
	return &gozstdWriter{zw: gozstd.NewWriterLevel(dst, clampZstdLevel(level))}, nil
}

// Decompress decompresses a zstd frame with libzstd.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decompressed, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
