// Package errs defines the error taxonomy shared by the chunk codec and both pipeline topologies.
//
// Every failure surfaced by prosto is an *Error carrying a Kind. Callers branch on the kind
// with errors.Is against the kind sentinels, or with KindOf:
//
//	if errors.Is(err, errs.ErrUpstream) {
//	    // the chunk source failed, not the framing
//	}
//
// The wrapped cause is always reachable through errors.Unwrap / errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by where it originated.
type Kind uint8

const (
	KindUnknown         Kind = iota
	KindCodec                // compressor or decompressor failure
	KindSerialization        // a record could not be serialized
	KindDeserialization      // bytes at the cursor do not parse as a record
	KindChannelClosed        // the mailbox a stage sends to is gone
	KindUpstream             // the input sequence of a transform failed
)

func (k Kind) String() string {
	switch k {
	case KindCodec:
		return "codec"
	case KindSerialization:
		return "serialization"
	case KindDeserialization:
		return "deserialization"
	case KindChannelClosed:
		return "channel_closed"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Kind sentinels. errors.Is(err, ErrCodec) reports whether err is a codec failure.
var (
	ErrCodec           = errors.New("codec failure")
	ErrSerialization   = errors.New("record serialization failed")
	ErrDeserialization = errors.New("record deserialization failed")
	ErrChannelClosed   = errors.New("channel closed")
	ErrUpstream        = errors.New("upstream failure")
)

// Usage errors that are not part of the taxonomy above.
var (
	ErrEncoderFinished  = errors.New("encoder already finished")
	ErrInvalidChunkSize = errors.New("invalid chunk size")
	ErrInvalidThreshold = errors.New("invalid flush threshold")
	ErrInvalidCapacity  = errors.New("invalid mailbox capacity")
	ErrNilSerializer    = errors.New("serializer is nil")
	ErrUnsupportedCodec = errors.New("unsupported compression type")
)

// Error is the tagged failure returned by prosto operations.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "encoder write"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.sentinel(), e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	default:
		return e.sentinel().Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinel so errors.Is(err, ErrCodec) works through wrapping.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindCodec:
		return ErrCodec
	case KindSerialization:
		return ErrSerialization
	case KindDeserialization:
		return ErrDeserialization
	case KindChannelClosed:
		return ErrChannelClosed
	case KindUpstream:
		return ErrUpstream
	default:
		return errUnknown
	}
}

var errUnknown = errors.New("unknown failure")

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Codec wraps a compressor or decompressor failure.
func Codec(op string, err error) error {
	return &Error{Kind: KindCodec, Op: op, Err: err}
}

// Serialization wraps a record serialization failure.
func Serialization(op string, err error) error {
	return &Error{Kind: KindSerialization, Op: op, Err: err}
}

// Deserialization wraps a record decoding failure.
func Deserialization(op string, err error) error {
	return &Error{Kind: KindDeserialization, Op: op, Err: err}
}

// ChannelClosed reports a send to a mailbox whose consumer is gone.
func ChannelClosed(op string) error {
	return &Error{Kind: KindChannelClosed, Op: op}
}

// Upstream tags a failure produced by the input of a sequence transform.
// The original error is passed through untouched as the cause.
func Upstream(err error) error {
	return &Error{Kind: KindUpstream, Err: err}
}
