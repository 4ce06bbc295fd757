package record_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/onsails/prosto/internal/testrecord"
	"github.com/onsails/prosto/record"
)

func TestMsgp_RoundTrip(t *testing.T) {
	s := testrecord.Serializer()

	records := testrecord.Random(rand.New(rand.NewPCG(1, 2)), 64, 512)
	records = append(records, testrecord.Sequential(3)...)

	var buf []byte
	for _, r := range records {
		var err error
		buf, err = s.Append(buf, r)
		require.NoError(t, err)
	}

	for _, want := range records {
		got, n, err := s.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
		buf = buf[n:]
	}
	require.Empty(t, buf)
}

func TestMsgp_LargeRecord(t *testing.T) {
	s := testrecord.Serializer()

	// larger than the pooled scratch buffer's retention threshold
	r := testrecord.Telemetry{ID: 7, Data: make([]byte, 2<<20)}

	buf, err := s.Append(nil, r)
	require.NoError(t, err)

	got, n, err := s.Decode(buf)
	require.NoError(t, err)
	require.Len(t, buf, n)
	require.Equal(t, r, got)
}

func TestMsgp_DecodeErrors(t *testing.T) {
	s := testrecord.Serializer()

	t.Run("not_msgpack", func(t *testing.T) {
		_, _, err := s.Decode(record.AppendFrame(nil, []byte{0xc1}))
		require.Error(t, err)
	})

	t.Run("wrong_arity", func(t *testing.T) {
		payload := msgp.AppendArrayHeader(nil, 3)
		payload = msgp.AppendUint64(payload, 1)
		payload = msgp.AppendBytes(payload, nil)
		payload = msgp.AppendNil(payload)

		_, _, err := s.Decode(record.AppendFrame(nil, payload))
		require.Error(t, err)
	})

	t.Run("trailing_bytes", func(t *testing.T) {
		r := testrecord.Telemetry{ID: 1}
		payload, err := r.MarshalMsg(nil)
		require.NoError(t, err)
		payload = append(payload, 0x00)

		_, _, err = s.Decode(record.AppendFrame(nil, payload))
		require.ErrorContains(t, err, "trailing bytes")
	})

	t.Run("truncated_frame", func(t *testing.T) {
		buf, err := s.Append(nil, testrecord.Telemetry{ID: 1, Data: []byte("payload")})
		require.NoError(t, err)

		_, _, err = s.Decode(buf[:len(buf)-3])
		require.Error(t, err)
	})
}
