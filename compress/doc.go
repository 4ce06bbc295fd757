// Package compress provides the streaming compression codecs prosto seals chunks with.
//
// A chunk is exactly one frame of the selected algorithm. The chunk encoder writes
// serialized records into a StreamWriter as they accumulate, reads how many compressed
// bytes the stream has produced so far, and closes the stream to seal the chunk. The
// decoder side always decompresses a whole frame at once.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    NewWriter(dst io.Writer, level int) (StreamWriter, error)
//	    RecommendedInputSize() int
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	    Type() format.CompressionType
//	}
//
// RecommendedInputSize is the amortization hint: the encoder buffers serialized records
// until it has that many bytes and only then hands them to the stream.
//
// # Supported Algorithms
//
// **Zstandard** (format.CompressionZstd), the default
//
//	codec := compress.NewZstdCompressor()
//	w, _ := codec.NewWriter(&buf, 5)
//
// Levels follow libzstd (-5..22). Pure Go by default; build with `-tags gozstd` (cgo)
// to use libzstd through github.com/valyala/gozstd. Recommended input size is 128KiB.
//
// **S2** (format.CompressionS2)
//
// The klauspost S2 stream format. Levels: <=1 default, 2..5 better, 6+ best.
//
// **LZ4** (format.CompressionLZ4)
//
// LZ4 frames with 64KiB blocks. Levels 0 (fast) to 9.
//
// **Snappy** (format.CompressionSnappy)
//
// The snappy framing format. No levels.
//
// **None** (format.CompressionNone)
//
// Pass-through. The chunk is the raw record stream.
//
// # Thread Safety
//
// Codec values are stateless and can be shared across goroutines. Every StreamWriter
// belongs to a single goroutine and writes synchronously to its destination.
//
// # Error Handling
//
// Decompression errors are the common case:
//   - Corrupted compressed data
//   - Truncated frames
//   - Data produced by a different algorithm
//
// All errors are wrapped with the algorithm name for debugging.
package compress
