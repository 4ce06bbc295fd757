// Package chunk converts between records and compressed chunks.
//
// A chunk is one self-contained compressed frame whose payload is a concatenation of
// length-delimited records:
//
//	chunk = compress( varint(len(r1)) r1  varint(len(r2)) r2  ... )
//
// There is no header or trailer: the frame format of the selected codec is the chunk
// format. A chunk always holds whole records, so any chunk decodes on its own.
//
// # Encoding
//
//	enc, err := chunk.NewEncoder(record.NewProto[*pb.Update](), chunk.WithLevel(5))
//	if err != nil {
//	    return err
//	}
//	for _, u := range updates {
//	    if _, err := enc.Write(u); err != nil {
//	        return err
//	    }
//	    if enc.CompressedLen() >= 256*1024 {
//	        break // seal here and start a new encoder
//	    }
//	}
//	data, err := enc.Finish()
//
// # Decoding
//
//	dec, err := chunk.NewDecoder(record.NewProto[*pb.Update](), data)
//	if err != nil {
//	    return err
//	}
//	for u, err := range dec.All() {
//	    ...
//	}
//
// Encoders and decoders are single-use and must not be shared between goroutines.
package chunk
