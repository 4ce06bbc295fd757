// Package record provides the length-delimited serializers that turn records into chunk payload bytes.
//
// Every serializer writes the protobuf delimited format: an unsigned varint byte length
// followed by the encoded record. A decompressed chunk is a plain concatenation of such
// frames, so it can also be read with protodelim or any other delimited-stream reader.
//
// Three serializers are built in:
//
//	record.NewProto[*pb.Update]()            // protobuf messages
//	record.NewMsgp[Update]()                 // tinylib/msgp generated types
//	record.Raw{}                             // opaque []byte records
//
// Serializers are stateless and safe for concurrent use.
package record

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Serializer encodes records of type R into length-delimited frames and decodes them back.
type Serializer[R any] interface {
	// Append appends the length-delimited encoding of r to dst and returns the extended slice.
	//
	// On error the returned slice has the length dst had on entry.
	Append(dst []byte, r R) ([]byte, error)

	// Decode decodes one length-delimited record from the front of src.
	//
	// It returns the record and the number of bytes consumed, prefix included.
	// The returned record never aliases src.
	Decode(src []byte) (R, int, error)
}

// Funcs adapts a pair of functions to Serializer.
type Funcs[R any] struct {
	AppendFunc func(dst []byte, r R) ([]byte, error)
	DecodeFunc func(src []byte) (R, int, error)
}

var _ Serializer[any] = Funcs[any]{}

// Append implements Serializer.
func (f Funcs[R]) Append(dst []byte, r R) ([]byte, error) {
	return f.AppendFunc(dst, r)
}

// Decode implements Serializer.
func (f Funcs[R]) Decode(src []byte) (R, int, error) {
	return f.DecodeFunc(src)
}

// AppendFrame appends payload to dst behind its varint length prefix.
func AppendFrame(dst []byte, payload []byte) []byte {
	return protowire.AppendBytes(dst, payload)
}

// FrameLen returns the size of a frame holding a payload of n bytes.
func FrameLen(n int) int {
	return protowire.SizeBytes(n)
}

// ConsumeFrame splits the first length-delimited frame off src.
//
// It returns the payload (aliasing src) and the total frame length.
func ConsumeFrame(src []byte) ([]byte, int, error) {
	payload, n := protowire.ConsumeBytes(src)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}

	return payload, n, nil
}
