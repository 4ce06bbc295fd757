//go:build !(cgo && gozstd)

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd library is explicitly designed for decoder reuse:
// "The decoder has been designed to operate without allocations after a warmup.
// This means that you should store the decoder for best performance."
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one encoder pool per klauspost speed level.
var zstdEncoderPools sync.Map // map[zstd.EncoderLevel]*sync.Pool

func zstdEncoderPool(level zstd.EncoderLevel) *sync.Pool {
	if p, ok := zstdEncoderPools.Load(level); ok {
		return p.(*sync.Pool)
	}

	p, _ := zstdEncoderPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			// Concurrency 1 keeps block encoding on the calling goroutine, so every
			// compressed byte is in dst when Write returns.
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderCRC(true),
			)
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}

			return encoder
		},
	})

	return p.(*sync.Pool)
}

// zstdWriter returns its encoder to the pool on Close.
type zstdWriter struct {
	enc  *zstd.Encoder
	pool *sync.Pool
}

func (w *zstdWriter) Write(p []byte) (int, error) {
	if w.enc == nil {
		return 0, io.ErrClosedPipe
	}

	return w.enc.Write(p)
}

func (w *zstdWriter) Flush() error {
	if w.enc == nil {
		return io.ErrClosedPipe
	}

	return w.enc.Flush()
}

func (w *zstdWriter) Close() error {
	if w.enc == nil {
		return nil
	}

	err := w.enc.Close()
	if err == nil {
		w.enc.Reset(nil)
		w.pool.Put(w.enc)
	}
	w.enc = nil

	return err
}

// NewWriter opens a zstd frame writing into dst.
//
// The libzstd level is mapped with zstd.EncoderLevelFromZstd: levels below 3 (including
// negative levels) use SpeedFastest, 3-5 SpeedDefault, 6-9 SpeedBetterCompression and
// 10+ SpeedBestCompression.
func (c ZstdCompressor) NewWriter(dst io.Writer, level int) (StreamWriter, error) {
	pool := zstdEncoderPool(zstd.EncoderLevelFromZstd(clampZstdLevel(level)))

	enc, _ := pool.Get().(*zstd.Encoder)
	enc.Reset(dst)

	return &zstdWriter{enc: enc, pool: pool}, nil
}

// Decompress decompresses a zstd frame.
// Uses a pooled decoder for better performance (eliminates allocation overhead).
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	// DecodeAll is stateless - safe to use with pooled decoder
	// Even if this call fails, the decoder can be reused for next call
	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
