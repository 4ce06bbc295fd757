package chunk

import (
	"io"
	"iter"

	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/internal/options"
	"github.com/onsails/prosto/record"
)

// Decoder reads records back out of one chunk.
//
// The chunk is decompressed in full when the decoder is created; records are then
// decoded lazily, one per Next call, in the order they were written.
//
// A malformed record ends decoding: there is no way to find the next record boundary
// without the length prefix, so the error is returned again by every later Next call.
type Decoder[R any] struct {
	s      record.Serializer[R]
	data   []byte
	offset int
	err    error
}

// NewDecoder decompresses chunk and returns a decoder positioned at its first record.
//
// Returns a KindCodec error if chunk is not a valid frame of the configured codec.
// An empty chunk yields a decoder with no records.
func NewDecoder[R any](s record.Serializer[R], chunk []byte, opts ...DecoderOption) (*Decoder[R], error) {
	if s == nil {
		return nil, errs.ErrNilSerializer
	}

	config := NewDecoderConfig()
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	data, err := config.codec.Decompress(chunk)
	if err != nil {
		return nil, errs.Codec("decompress chunk", err)
	}

	return &Decoder[R]{s: s, data: data}, nil
}

// Next decodes the record at the cursor.
//
// Returns io.EOF once every record has been read, or a KindDeserialization error if
// the bytes at the cursor do not form a record.
func (d *Decoder[R]) Next() (R, error) {
	var zero R

	if d.err != nil {
		return zero, d.err
	}
	if d.offset >= len(d.data) {
		return zero, io.EOF
	}

	r, n, err := d.s.Decode(d.data[d.offset:])
	if err != nil {
		d.err = errs.Deserialization("decode record", err)
		return zero, d.err
	}
	d.offset += n

	return r, nil
}

// All returns a sequence over the remaining records.
//
// The sequence ends after the last record or after yielding the first error.
func (d *Decoder[R]) All() iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for {
			r, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// Len returns the decompressed size of the chunk.
func (d *Decoder[R]) Len() int {
	return len(d.data)
}

// Remaining returns the number of decompressed bytes not yet decoded.
func (d *Decoder[R]) Remaining() int {
	return len(d.data) - d.offset
}
