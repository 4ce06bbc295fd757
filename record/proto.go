package record

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Proto serializes generated protobuf messages. M is the message pointer type, e.g. *pb.Update.
//
// The frame layout is identical to protodelim.MarshalTo.
type Proto[M proto.Message] struct {
	mt protoreflect.MessageType
}

var _ Serializer[proto.Message] = Proto[proto.Message]{}

// NewProto creates a serializer for the generated message type M.
//
// M must be a generated message pointer: its nil value is used to look up the message type.
func NewProto[M proto.Message]() Proto[M] {
	var zero M
	return Proto[M]{mt: zero.ProtoReflect().Type()}
}

// Append implements Serializer.
func (p Proto[M]) Append(dst []byte, m M) ([]byte, error) {
	start := len(dst)
	size := proto.Size(m)
	dst = protowire.AppendVarint(dst, uint64(size))

	out, err := proto.MarshalOptions{UseCachedSize: true}.MarshalAppend(dst, m)
	if err != nil {
		return dst[:start], fmt.Errorf("marshal %s: %w", p.name(), err)
	}

	return out, nil
}

// Decode implements Serializer.
func (p Proto[M]) Decode(src []byte) (M, int, error) {
	var zero M

	payload, n, err := ConsumeFrame(src)
	if err != nil {
		return zero, 0, fmt.Errorf("read %s frame: %w", p.name(), err)
	}

	m, ok := p.newMessage().(M)
	if !ok {
		return zero, 0, fmt.Errorf("message type %s does not match serializer type", p.name())
	}
	if err := proto.Unmarshal(payload, m); err != nil {
		return zero, 0, fmt.Errorf("unmarshal %s: %w", p.name(), err)
	}

	return m, n, nil
}

func (p Proto[M]) newMessage() proto.Message {
	if p.mt == nil {
		var zero M
		return zero.ProtoReflect().Type().New().Interface()
	}

	return p.mt.New().Interface()
}

func (p Proto[M]) name() protoreflect.FullName {
	if p.mt == nil {
		var zero M
		return zero.ProtoReflect().Descriptor().FullName()
	}

	return p.mt.Descriptor().FullName()
}
