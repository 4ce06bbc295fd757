package chunk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/format"
	"github.com/onsails/prosto/internal/testrecord"
	"github.com/onsails/prosto/record"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
	format.CompressionSnappy,
}

// encodeChunk writes records into a single chunk.
func encodeChunk[R any](t *testing.T, s record.Serializer[R], records []R, opts ...EncoderOption) []byte {
	t.Helper()

	enc, err := NewEncoder(s, opts...)
	require.NoError(t, err)

	for _, r := range records {
		_, err := enc.Write(r)
		require.NoError(t, err)
	}
	require.Equal(t, len(records), enc.Len())

	data, err := enc.Finish()
	require.NoError(t, err)

	return data
}

// decodeChunk reads every record of a chunk.
func decodeChunk[R any](t *testing.T, s record.Serializer[R], data []byte, opts ...DecoderOption) []R {
	t.Helper()

	dec, err := NewDecoder(s, data, opts...)
	require.NoError(t, err)

	var out []R
	for r, err := range dec.All() {
		require.NoError(t, err)
		out = append(out, r)
	}
	require.Zero(t, dec.Remaining())

	return out
}

func TestEncoder_RoundTrip(t *testing.T) {
	s := testrecord.Serializer()
	counts := []int{1, 10, 1000}

	for _, cType := range allTypes {
		for _, count := range counts {
			t.Run(fmt.Sprintf("%s_%d", cType, count), func(t *testing.T) {
				records := testrecord.Random(rand.New(rand.NewPCG(uint64(count), 7)), count, 300)

				data := encodeChunk(t, s, records, WithCompression(cType))
				require.NotEmpty(t, data)

				got := decodeChunk(t, s, data, WithDecompression(cType))
				require.Equal(t, records, got)
			})
		}
	}
}

func TestEncoder_Levels(t *testing.T) {
	s := testrecord.Serializer()
	records := testrecord.Sequential(500)

	for _, level := range []int{-5, 1, 3, 5, 19, 22, 100} {
		t.Run(fmt.Sprintf("zstd_level_%d", level), func(t *testing.T) {
			data := encodeChunk(t, s, records, WithLevel(level))
			require.Equal(t, records, decodeChunk(t, s, data))
		})
	}
}

func TestEncoder_EmptyChunk(t *testing.T) {
	for _, cType := range allTypes {
		t.Run(cType.String(), func(t *testing.T) {
			enc, err := NewEncoder(record.Raw{}, WithCompression(cType))
			require.NoError(t, err)
			require.Zero(t, enc.CompressedLen())

			data, err := enc.Finish()
			require.NoError(t, err)
			require.Empty(t, data)

			dec, err := NewDecoder(record.Raw{}, data, WithDecompression(cType))
			require.NoError(t, err)
			_, err = dec.Next()
			require.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestEncoder_WriteReturnsRecordLength(t *testing.T) {
	enc, err := NewEncoder(record.Raw{})
	require.NoError(t, err)
	defer enc.Abort()

	n, err := enc.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n, "the varint prefix is not counted")

	n, err = enc.Write(make([]byte, 200))
	require.NoError(t, err)
	require.Equal(t, 200, n, "two-byte prefix is not counted")

	n, err = enc.Write(nil)
	require.NoError(t, err)
	require.Zero(t, n)

	require.Equal(t, 4+202+1, enc.PendingLen(), "pending bytes include every prefix")
	require.Zero(t, enc.CompressedLen(), "nothing reaches the compressor below the flush threshold")
}

func TestEncoder_MalformedFrame(t *testing.T) {
	s := record.Funcs[[]byte]{
		AppendFunc: func(dst []byte, r []byte) ([]byte, error) {
			if len(r) == 0 {
				// length prefix promising more bytes than follow
				return append(dst, 0x05, 'x'), nil
			}
			return record.AppendFrame(dst, r), nil
		},
		DecodeFunc: record.Raw{}.Decode,
	}

	enc, err := NewEncoder(record.Serializer[[]byte](s))
	require.NoError(t, err)
	defer enc.Abort()

	_, err = enc.Write([]byte("ok"))
	require.NoError(t, err)

	_, err = enc.Write([]byte{})
	require.ErrorIs(t, err, errs.ErrSerialization)
	require.Equal(t, 1, enc.Len())
	require.Equal(t, 3, enc.PendingLen(), "the malformed frame is discarded")
}

func TestEncoder_FlushThreshold(t *testing.T) {
	enc, err := NewEncoder(record.Raw{}, WithFlushThreshold(100), WithSyncFlush(true))
	require.NoError(t, err)
	require.Equal(t, 100, enc.FlushThreshold())

	_, err = enc.Write(make([]byte, 50))
	require.NoError(t, err)
	require.Equal(t, 51, enc.PendingLen())
	require.Zero(t, enc.CompressedLen())

	_, err = enc.Write(make([]byte, 50))
	require.NoError(t, err)
	require.Zero(t, enc.PendingLen(), "pending buffer is handed to the compressor at the threshold")
	require.Positive(t, enc.CompressedLen(), "sync flush makes compressed output visible")

	data, err := enc.Finish()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 1)

	got := decodeChunk(t, record.Serializer[[]byte](record.Raw{}), data)
	require.Equal(t, [][]byte{make([]byte, 50), make([]byte, 50)}, got)
}

func TestEncoder_DefaultFlushThreshold(t *testing.T) {
	enc, err := NewEncoder(record.Raw{})
	require.NoError(t, err)
	defer enc.Abort()

	require.Equal(t, format.CompressionZstd, enc.Compression())
	require.Equal(t, DefaultLevel, enc.Level())
	require.Equal(t, 128*1024, enc.FlushThreshold())
}

func TestEncoder_CompressedLenGrows(t *testing.T) {
	enc, err := NewEncoder(record.Raw{}, WithSyncFlush(true), WithFlushThreshold(1024))
	require.NoError(t, err)
	defer enc.Abort()

	rng := rand.New(rand.NewPCG(3, 4))
	prev := 0
	for range 64 {
		payload := make([]byte, 1024)
		for i := range payload {
			payload[i] = byte(rng.UintN(256))
		}
		_, err := enc.Write(payload)
		require.NoError(t, err)

		require.Greater(t, enc.CompressedLen(), prev)
		prev = enc.CompressedLen()
	}
}

func TestEncoder_SerializationError(t *testing.T) {
	errBad := errors.New("bad record")
	s := record.Funcs[string]{
		AppendFunc: func(dst []byte, r string) ([]byte, error) {
			if r == "bad" {
				return append(dst, "garbage"...), errBad
			}
			return record.AppendFrame(dst, []byte(r)), nil
		},
		DecodeFunc: func(src []byte) (string, int, error) {
			payload, n, err := record.ConsumeFrame(src)
			return string(payload), n, err
		},
	}

	enc, err := NewEncoder[string](s)
	require.NoError(t, err)

	_, err = enc.Write("good")
	require.NoError(t, err)

	_, err = enc.Write("bad")
	require.ErrorIs(t, err, errs.ErrSerialization)
	require.ErrorIs(t, err, errBad)
	require.Equal(t, errs.KindSerialization, errs.KindOf(err))
	require.Equal(t, 5, enc.PendingLen(), "partial output of a failed record is discarded")

	_, err = enc.Write("after")
	require.NoError(t, err)

	data, err := enc.Finish()
	require.NoError(t, err)
	require.Equal(t, []string{"good", "after"}, decodeChunk(t, record.Serializer[string](s), data))
}

func TestEncoder_Finished(t *testing.T) {
	enc, err := NewEncoder(record.Raw{})
	require.NoError(t, err)

	_, err = enc.Write([]byte("x"))
	require.NoError(t, err)

	_, err = enc.Finish()
	require.NoError(t, err)

	_, err = enc.Write([]byte("y"))
	require.ErrorIs(t, err, errs.ErrEncoderFinished)

	_, err = enc.Finish()
	require.ErrorIs(t, err, errs.ErrEncoderFinished)

	enc.Abort()
	require.Zero(t, enc.CompressedLen())
	require.Zero(t, enc.PendingLen())
}

func TestEncoder_Abort(t *testing.T) {
	enc, err := NewEncoder(record.Raw{})
	require.NoError(t, err)

	_, err = enc.Write([]byte("discarded"))
	require.NoError(t, err)

	enc.Abort()
	enc.Abort()

	_, err = enc.Write([]byte("y"))
	require.ErrorIs(t, err, errs.ErrEncoderFinished)

	_, err = enc.Finish()
	require.ErrorIs(t, err, errs.ErrEncoderFinished)
}

func TestEncoder_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  EncoderOption
		want error
	}{
		{name: "unknown_codec", opt: WithCompression(format.CompressionType(0x7f)), want: errs.ErrUnsupportedCodec},
		{name: "zero_threshold", opt: WithFlushThreshold(0), want: errs.ErrInvalidThreshold},
		{name: "negative_threshold", opt: WithFlushThreshold(-1), want: errs.ErrInvalidThreshold},
		{name: "negative_capacity", opt: WithChunkCapacity(-1), want: errs.ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEncoder(record.Raw{}, tt.opt)
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewEncoder[[]byte](nil)
	require.ErrorIs(t, err, errs.ErrNilSerializer)
}

func TestEncoder_ChunkCapacity(t *testing.T) {
	records := [][]byte{bytes.Repeat([]byte("telemetry"), 100)}

	data := encodeChunk(t, record.Serializer[[]byte](record.Raw{}), records, WithChunkCapacity(64*1024))
	require.Equal(t, records, decodeChunk(t, record.Serializer[[]byte](record.Raw{}), data))
}
