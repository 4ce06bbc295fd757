// Package testrecord provides a small msgp record type and generators shared by tests and examples.
package testrecord

import (
	"math/rand/v2"

	"github.com/tinylib/msgp/msgp"

	"github.com/onsails/prosto/record"
)

// Telemetry is a minimal telemetry update: an identifier and an opaque payload.
//
// The msgp methods are written by hand in the shape `msgp -marshal` generates for
//
//	type Telemetry struct {
//	    ID   uint64 `msg:"id"`
//	    Data []byte `msg:"data"`
//	}
type Telemetry struct {
	ID   uint64
	Data []byte
}

var (
	_ msgp.Marshaler   = (*Telemetry)(nil)
	_ msgp.Unmarshaler = (*Telemetry)(nil)
	_ msgp.Sizer       = (*Telemetry)(nil)
)

// MarshalMsg implements msgp.Marshaler.
func (z *Telemetry) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendUint64(o, z.ID)
	o = msgp.AppendBytes(o, z.Data)

	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (z *Telemetry) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, msgp.WrapError(err)
	}
	if sz != 2 {
		return bts, msgp.ArrayError{Wanted: 2, Got: sz}
	}

	z.ID, bts, err = msgp.ReadUint64Bytes(bts)
	if err != nil {
		return bts, msgp.WrapError(err, "ID")
	}

	z.Data, bts, err = msgp.ReadBytesBytes(bts, z.Data[:0])
	if err != nil {
		return bts, msgp.WrapError(err, "Data")
	}
	if len(z.Data) == 0 {
		z.Data = nil
	}

	return bts, nil
}

// Msgsize implements msgp.Sizer.
func (z *Telemetry) Msgsize() int {
	return 1 + msgp.Uint64Size + msgp.BytesPrefixSize + len(z.Data)
}

// Serializer returns the msgp serializer for Telemetry.
func Serializer() record.Msgp[Telemetry, *Telemetry] {
	return record.NewMsgp[Telemetry]()
}

// Sequential returns n records where record i carries i bytes 0..i-1 (mod 256).
//
// Record 0 has nil data, matching what decoding produces for an empty payload.
func Sequential(n int) []Telemetry {
	out := make([]Telemetry, n)
	for i := range out {
		out[i].ID = uint64(i)
		if i > 0 {
			out[i].Data = make([]byte, i)
			for j := range out[i].Data {
				out[i].Data[j] = byte(j)
			}
		}
	}

	return out
}

// Random returns n records with random identifiers and payloads of up to maxData bytes.
func Random(r *rand.Rand, n, maxData int) []Telemetry {
	out := make([]Telemetry, n)
	for i := range out {
		out[i].ID = r.Uint64()
		if size := r.IntN(maxData + 1); size > 0 {
			out[i].Data = make([]byte, size)
			for j := range out[i].Data {
				out[i].Data[j] = byte(r.UintN(256))
			}
		}
	}

	return out
}
