package record

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/onsails/prosto/internal/pool"
)

// msgpable is satisfied by the pointer type of a msgp-generated struct.
type msgpable[T any] interface {
	*T
	msgp.Marshaler
	msgp.Unmarshaler
}

// Msgp serializes tinylib/msgp types. Records are passed by value; the pointer type PT
// must implement MarshalMsg and UnmarshalMsg (the methods `msgp -marshal` generates).
type Msgp[T any, PT msgpable[T]] struct{}

// NewMsgp creates a serializer for the msgp type T.
func NewMsgp[T any, PT msgpable[T]]() Msgp[T, PT] {
	return Msgp[T, PT]{}
}

// Append implements Serializer.
func (Msgp[T, PT]) Append(dst []byte, r T) ([]byte, error) {
	// The varint prefix depends on the payload length, so the payload is marshaled
	// into a pooled scratch buffer first.
	scratch := pool.GetPendingBuffer()
	defer pool.PutPendingBuffer(scratch)

	payload, err := PT(&r).MarshalMsg(scratch.B[:0])
	if err != nil {
		return dst, fmt.Errorf("marshal msgp record: %w", err)
	}
	scratch.B = payload

	return AppendFrame(dst, payload), nil
}

// Decode implements Serializer.
func (Msgp[T, PT]) Decode(src []byte) (T, int, error) {
	var r T

	payload, n, err := ConsumeFrame(src)
	if err != nil {
		return r, 0, fmt.Errorf("read msgp frame: %w", err)
	}

	rest, err := PT(&r).UnmarshalMsg(payload)
	if err != nil {
		return r, 0, fmt.Errorf("unmarshal msgp record: %w", err)
	}
	if len(rest) != 0 {
		return r, 0, fmt.Errorf("unmarshal msgp record: %d trailing bytes in frame", len(rest))
	}

	return r, n, nil
}
