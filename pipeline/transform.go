package pipeline

import (
	"iter"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/record"
)

// Compress turns a sequence of records into a sequence of chunks.
//
// A chunk is yielded each time the compressed size reaches the chunk size; after the
// input ends the trailing chunk is yielded if it holds at least one record. The first
// error is yielded and ends the sequence. Breaking out of the loop early discards the
// partially filled chunk.
//
// Records are pulled from in only as chunks are demanded; nothing runs in the background.
func Compress[R any](in iter.Seq[R], s record.Serializer[R], opts ...Option) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		t, err := newCompressTransform(s, opts)
		if err != nil {
			yield(nil, err)
			return
		}
		defer t.abort()

		next, stop := iter.Pull(in)
		defer stop()

		for {
			data, ok, err := t.step(next)
			if err != nil {
				t.cfg.metrics.recordError(StageCompress, err)
				yield(nil, err)
				return
			}
			if !ok || !yield(data, nil) {
				return
			}
		}
	}
}

// Decompress turns a sequence of chunks into the sequence of their records, in order.
//
// A codec or deserialization failure is yielded and ends the sequence.
func Decompress[R any](in iter.Seq[[]byte], s record.Serializer[R], opts ...Option) iter.Seq2[R, error] {
	return TryDecompress(func(yield func([]byte, error) bool) {
		for data := range in {
			if !yield(data, nil) {
				return
			}
		}
	}, s, opts...)
}

// TryDecompress is Decompress over a fallible chunk source, such as a network reader.
//
// An error from in is yielded as a KindUpstream error wrapping the original and ends the
// sequence; it is never reported as a codec failure.
func TryDecompress[R any](in iter.Seq2[[]byte, error], s record.Serializer[R], opts ...Option) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		var zero R

		if s == nil {
			yield(zero, errs.ErrNilSerializer)
			return
		}
		cfg, err := newConfig(opts)
		if err != nil {
			yield(zero, err)
			return
		}

		fail := func(err error) {
			cfg.metrics.recordError(StageDecompress, err)
			yield(zero, err)
		}

		for data, err := range in {
			if err != nil {
				fail(errs.Upstream(err))
				return
			}

			dec, err := chunk.NewDecoder(s, data, cfg.decoderOptions()...)
			if err != nil {
				fail(err)
				return
			}
			cfg.metrics.recordChunk(StageDecompress, len(data))

			records := 0
			for r, err := range dec.All() {
				if err != nil {
					fail(err)
					return
				}
				if !yield(r, nil) {
					return
				}
				records++
			}
			cfg.metrics.recordRecords(StageDecompress, records, dec.Len())
		}
	}
}

// transformState is the lifecycle of a compress transform.
type transformState uint8

const (
	stateActive   transformState = iota // pulling records
	stateDraining                       // input exhausted, trailing chunk not yet emitted
	stateDone
)

// compressTransform holds at most one open encoder. It is created lazily on the first
// record of each chunk, so empty input never opens a compression stream.
type compressTransform[R any] struct {
	s     record.Serializer[R]
	cfg   *Config
	enc   *chunk.Encoder[R]
	state transformState
}

func newCompressTransform[R any](s record.Serializer[R], opts []Option) (*compressTransform[R], error) {
	if s == nil {
		return nil, errs.ErrNilSerializer
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &compressTransform[R]{s: s, cfg: cfg}, nil
}

// step pulls records until a chunk is ready or the transform is done.
// ok is false once there is nothing left to emit.
func (t *compressTransform[R]) step(next func() (R, bool)) (data []byte, ok bool, err error) {
	for {
		switch t.state {
		case stateActive:
			r, more := next()
			if !more {
				t.state = stateDraining
				continue
			}

			if err := t.write(r); err != nil {
				t.state = stateDone
				return nil, false, err
			}
			if t.enc.CompressedLen() < t.cfg.chunkSize {
				continue
			}

			data, err := t.seal()
			if err != nil {
				t.state = stateDone
				return nil, false, err
			}

			return data, true, nil

		case stateDraining:
			t.state = stateDone
			if t.enc == nil {
				continue
			}

			data, err := t.seal()
			if err != nil {
				return nil, false, err
			}
			if len(data) == 0 {
				continue
			}

			return data, true, nil

		default:
			return nil, false, nil
		}
	}
}

func (t *compressTransform[R]) write(r R) error {
	if t.enc == nil {
		enc, err := chunk.NewEncoder(t.s, t.cfg.encoderOptions()...)
		if err != nil {
			return err
		}
		t.enc = enc
	}

	n, err := t.enc.Write(r)
	if err != nil {
		return err
	}
	t.cfg.metrics.recordRecords(StageCompress, 1, record.FrameLen(n))

	return nil
}

func (t *compressTransform[R]) seal() ([]byte, error) {
	enc := t.enc
	t.enc = nil

	data, err := enc.Finish()
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		t.cfg.metrics.recordChunk(StageCompress, len(data))
	}

	return data, nil
}

func (t *compressTransform[R]) abort() {
	if t.enc != nil {
		t.enc.Abort()
		t.enc = nil
	}
	t.state = stateDone
}
