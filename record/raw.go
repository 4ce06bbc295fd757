package record

import (
	"bytes"
	"fmt"
)

// Raw serializes opaque byte records. It is used when the payload is already encoded,
// for example by the CLI which carries input lines as records.
type Raw struct{}

var _ Serializer[[]byte] = Raw{}

// Append implements Serializer.
func (Raw) Append(dst []byte, r []byte) ([]byte, error) {
	return AppendFrame(dst, r), nil
}

// Decode implements Serializer. The returned record is a copy.
func (Raw) Decode(src []byte) ([]byte, int, error) {
	payload, n, err := ConsumeFrame(src)
	if err != nil {
		return nil, 0, fmt.Errorf("read raw frame: %w", err)
	}

	return bytes.Clone(payload), n, nil
}
