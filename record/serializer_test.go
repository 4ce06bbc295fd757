package record

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestAppendFrame_ConsumeFrame(t *testing.T) {
	var buf []byte
	buf = AppendFrame(buf, []byte("hello"))
	buf = AppendFrame(buf, nil)
	buf = AppendFrame(buf, make([]byte, 300))

	payload, n, err := ConsumeFrame(buf)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []byte("hello"), payload)
	buf = buf[n:]

	payload, n, err = ConsumeFrame(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Empty(t, payload)
	buf = buf[n:]

	payload, n, err = ConsumeFrame(buf)
	require.NoError(t, err)
	require.Equal(t, 302, n, "300 needs a two byte varint")
	require.Len(t, payload, 300)
	require.Len(t, buf, n)
}

func TestFrameLen(t *testing.T) {
	for _, n := range []int{0, 1, 127, 128, 300, 16383, 16384, 1 << 20} {
		require.Len(t, AppendFrame(nil, make([]byte, n)), FrameLen(n), n)
	}
}

func TestConsumeFrame_Truncated(t *testing.T) {
	full := AppendFrame(nil, []byte("truncated payload"))

	tests := []struct {
		name string
		src  []byte
	}{
		{name: "empty", src: nil},
		{name: "prefix_only", src: full[:1]},
		{name: "short_payload", src: full[:len(full)-1]},
		{name: "overlong_varint", src: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, n, err := ConsumeFrame(tt.src)
			require.Error(t, err)
			require.Zero(t, n)
		})
	}
}

func TestProto_RoundTrip(t *testing.T) {
	s := NewProto[*wrapperspb.BytesValue]()

	msgs := []*wrapperspb.BytesValue{
		wrapperspb.Bytes([]byte("first")),
		wrapperspb.Bytes(nil),
		wrapperspb.Bytes(make([]byte, 1000)),
	}

	var buf []byte
	for _, m := range msgs {
		var err error
		buf, err = s.Append(buf, m)
		require.NoError(t, err)
	}

	for _, want := range msgs {
		got, n, err := s.Decode(buf)
		require.NoError(t, err)
		require.True(t, proto.Equal(want, got), "want %v, got %v", want, got)
		buf = buf[n:]
	}
	require.Empty(t, buf)
}

func TestProto_MatchesProtodelim(t *testing.T) {
	s := NewProto[*wrapperspb.StringValue]()
	m := wrapperspb.String("telemetry update")

	got, err := s.Append(nil, m)
	require.NoError(t, err)

	var want bytesWriter
	_, err = protodelim.MarshalTo(&want, m)
	require.NoError(t, err)

	require.Equal(t, []byte(want), got)
}

func TestProto_DecodeErrors(t *testing.T) {
	s := NewProto[*wrapperspb.StringValue]()

	t.Run("truncated_frame", func(t *testing.T) {
		buf, err := s.Append(nil, wrapperspb.String("abcdef"))
		require.NoError(t, err)

		_, _, err = s.Decode(buf[:len(buf)-2])
		require.Error(t, err)
	})

	t.Run("invalid_message", func(t *testing.T) {
		// field 1, wire type bytes, length 5 but only 1 byte present inside the frame
		payload := protowire.AppendTag(nil, 1, protowire.BytesType)
		payload = protowire.AppendVarint(payload, 5)
		payload = append(payload, 'x')

		_, _, err := s.Decode(AppendFrame(nil, payload))
		require.Error(t, err)
	})
}

func TestRaw_RoundTrip(t *testing.T) {
	var s Raw

	records := [][]byte{[]byte("a"), []byte("bb"), make([]byte, 200)}

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

		// decoded records never alias the source
		if len(got) > 0 {
			buf[n-1] ^= 0xff
			require.Equal(t, want, got)
			buf[n-1] ^= 0xff
		}
		buf = buf[n:]
	}
}

func TestFuncs(t *testing.T) {
	s := Funcs[string]{
		AppendFunc: func(dst []byte, r string) ([]byte, error) {
			return AppendFrame(dst, []byte(r)), nil
		},
		DecodeFunc: func(src []byte) (string, int, error) {
			payload, n, err := ConsumeFrame(src)
			return string(payload), n, err
		},
	}

	buf, err := s.Append(nil, "record")
	require.NoError(t, err)

	got, n, err := s.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, "record", got)
	require.Len(t, buf, n)
}

type bytesWriter []byte

func (w *bytesWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
