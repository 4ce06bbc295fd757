package chunk

import (
	"github.com/onsails/prosto/compress"
	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/internal/options"
	"github.com/onsails/prosto/internal/pool"
	"github.com/onsails/prosto/record"
)

// Encoder packs records into one compressed chunk.
//
// Serialized records accumulate in a pooled pending buffer and are handed to the
// compression stream in batches of FlushThreshold bytes, so small records do not each
// pay the per-call cost of the compressor. A batch flush never ends the chunk; only
// Finish does.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used by a single goroutine at a time.
//
// Note: The Encoder is NOT reusable. After calling Finish or Abort, a new encoder must be created.
type Encoder[R any] struct {
	*EncoderConfig

	s       record.Serializer[R]
	w       compress.StreamWriter
	out     *pool.ByteBuffer // compressed output, handed to the caller by Finish
	pending *pool.ByteBuffer // serialized records not yet written to w

	threshold int
	records   int
	finished  bool
	err       error // sticky codec failure
}

// NewEncoder creates an encoder for records handled by s.
//
// Returns a KindCodec error if the compression stream cannot be opened.
func NewEncoder[R any](s record.Serializer[R], opts ...EncoderOption) (*Encoder[R], error) {
	if s == nil {
		return nil, errs.ErrNilSerializer
	}

	config := NewEncoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	out := pool.NewByteBuffer(config.chunkCapacity)
	w, err := config.codec.NewWriter(out, config.level)
	if err != nil {
		return nil, errs.Codec("open compression stream", err)
	}

	return &Encoder[R]{
		EncoderConfig: config,
		s:             s,
		w:             w,
		out:           out,
		pending:       pool.GetPendingBuffer(),
		threshold:     config.FlushThreshold(),
	}, nil
}

// Write appends the length-delimited encoding of r to the chunk.
//
// It returns the serialized length of r, not counting the varint length prefix. Once the
// pending buffer reaches the flush threshold it is written into the compression stream.
//
// Returns:
//   - KindSerialization error if r cannot be serialized; the encoder stays usable
//   - KindCodec error if the compressor rejects the input; the encoder is unusable afterwards
//   - errs.ErrEncoderFinished after Finish or Abort
func (e *Encoder[R]) Write(r R) (int, error) {
	if e.finished {
		return 0, errs.ErrEncoderFinished
	}
	if e.err != nil {
		return 0, e.err
	}

	before := len(e.pending.B)
	buf, err := e.s.Append(e.pending.B, r)
	if err != nil {
		e.pending.B = e.pending.B[:before]
		return 0, errs.Serialization("encoder write", err)
	}
	payload, _, err := record.ConsumeFrame(buf[before:])
	if err != nil {
		e.pending.B = buf[:before]
		return 0, errs.Serialization("encoder write", err)
	}
	e.pending.B = buf
	e.records++

	if len(e.pending.B) >= e.threshold {
		if err := e.flushPending(); err != nil {
			return 0, err
		}
	}

	return len(payload), nil
}

// CompressedLen returns the number of compressed bytes produced for this chunk so far.
//
// Records still in the pending buffer or inside the compressor's window are not counted,
// so the value lags behind what Finish will return.
func (e *Encoder[R]) CompressedLen() int {
	if e.out == nil {
		return 0
	}

	return e.out.Len()
}

// Len returns the number of records written.
func (e *Encoder[R]) Len() int {
	return e.records
}

// PendingLen returns the number of serialized bytes not yet handed to the compressor.
func (e *Encoder[R]) PendingLen() int {
	if e.pending == nil {
		return 0
	}

	return e.pending.Len()
}

// Finish flushes the pending records, finalizes the compressed frame and returns the chunk.
//
// If no record was written the chunk is empty: no zero-record frame is produced.
// The encoder cannot be used afterwards.
func (e *Encoder[R]) Finish() ([]byte, error) {
	if e.finished {
		return nil, errs.ErrEncoderFinished
	}
	e.finished = true
	defer e.release()

	if e.err != nil {
		return nil, e.err
	}
	if e.records == 0 {
		return nil, nil
	}

	if err := e.flushPending(); err != nil {
		return nil, err
	}

	w := e.w
	e.w = nil
	if err := w.Close(); err != nil {
		return nil, errs.Codec("finish chunk", err)
	}

	chunk := e.out.B
	e.out = nil

	return chunk, nil
}

// Abort releases the encoder without producing a chunk. It is a no-op after Finish.
func (e *Encoder[R]) Abort() {
	if e.finished {
		return
	}
	e.finished = true
	e.release()
}

func (e *Encoder[R]) flushPending() error {
	if len(e.pending.B) == 0 {
		return nil
	}

	if _, err := e.w.Write(e.pending.B); err != nil {
		e.err = errs.Codec("compress records", err)
		return e.err
	}
	e.pending.Reset()

	if e.syncFlush {
		if err := e.w.Flush(); err != nil {
			e.err = errs.Codec("flush compression stream", err)
			return e.err
		}
	}

	return nil
}

// release closes the stream if still open and returns pooled buffers.
func (e *Encoder[R]) release() {
	if e.w != nil {
		// Closing returns pooled compressor state; the output is discarded.
		_ = e.w.Close()
		e.w = nil
	}
	if e.pending != nil {
		pool.PutPendingBuffer(e.pending)
		e.pending = nil
	}
	e.out = nil
}
