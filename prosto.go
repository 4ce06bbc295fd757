// Package prosto packs a stream of small records into size-bounded compressed chunks and
// unpacks them again.
//
// prosto is meant for producers of many small messages (telemetry updates, events, log
// lines) that ship them over a byte-oriented channel. Records are length-delimited,
// concatenated and compressed as one frame per chunk, so compression cost is amortized
// across records while the size of one transmission unit stays bounded.
//
// # Core Features
//
//   - Any record type through record.Serializer (protobuf, msgpack and raw bytes built in)
//   - Streaming compression with zstd (default), S2, LZ4, Snappy or none
//   - Chunks sealed by compressed size, never splitting a record
//   - Actor pipelines over bounded mailboxes with backpressure
//   - iter.Seq transforms with upstream error passthrough
//   - Prometheus metrics and logrus logging for both topologies
//
// # Basic Usage
//
// Encoding a batch of records:
//
//	import "github.com/onsails/prosto"
//
//	s := record.NewProto[*pb.Update]()
//	chunks, err := prosto.EncodeAll(updates, s, pipeline.WithChunkSize(64*1024))
//	if err != nil {
//	    return err
//	}
//
// Decoding them:
//
//	updates, err := prosto.DecodeAll(chunks, s)
//
// Running an actor pipeline:
//
//	p, _ := prosto.NewPipeline(s, 16)
//	go p.Run(ctx)
//	p.In().Send(ctx, update)
//	p.In().Close()
//	for {
//	    u, err := p.Out().Recv(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the chunk and pipeline
// packages. For fine-grained control, use those packages directly.
package prosto

import (
	"context"
	"slices"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/internal/hash"
	"github.com/onsails/prosto/pipeline"
	"github.com/onsails/prosto/record"
)

// NewEncoder creates a chunk encoder for records handled by s.
//
// Available options:
//   - chunk.WithCompression(format.CompressionZstd|S2|LZ4|Snappy|None)
//   - chunk.WithLevel(level)
//   - chunk.WithFlushThreshold(n)
//   - chunk.WithChunkCapacity(n)
//   - chunk.WithSyncFlush(true|false)
//
// Example:
//
//	enc, err := prosto.NewEncoder(record.NewProto[*pb.Update](), chunk.WithLevel(5))
func NewEncoder[R any](s record.Serializer[R], opts ...chunk.EncoderOption) (*chunk.Encoder[R], error) {
	return chunk.NewEncoder(s, opts...)
}

// NewDecoder decompresses data and returns a decoder over its records.
//
// The compression option must match the one the chunk was encoded with.
func NewDecoder[R any](s record.Serializer[R], data []byte, opts ...chunk.DecoderOption) (*chunk.Decoder[R], error) {
	return chunk.NewDecoder(s, data, opts...)
}

// EncodeAll packs records into chunks.
//
// A chunk is sealed once its compressed size reaches the chunk size (256 KiB unless
// pipeline.WithChunkSize is given). No records means no chunks.
func EncodeAll[R any](records []R, s record.Serializer[R], opts ...pipeline.Option) ([][]byte, error) {
	var chunks [][]byte
	for data, err := range pipeline.Compress(slices.Values(records), s, opts...) {
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, data)
	}

	return chunks, nil
}

// DecodeAll unpacks every record of chunks, in order.
func DecodeAll[R any](chunks [][]byte, s record.Serializer[R], opts ...pipeline.Option) ([]R, error) {
	var records []R
	for r, err := range pipeline.Decompress(slices.Values(chunks), s, opts...) {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, nil
}

// Pipeline is a compress stage feeding a decompress stage through a chunk mailbox.
//
// It is mostly useful for tests and in-process fan-in; split deployments run the two
// stages on either side of a transport instead.
type Pipeline[R any] struct {
	in     *pipeline.Mailbox[R]
	chunks *pipeline.Mailbox[[]byte]
	out    *pipeline.Mailbox[R]

	comp   *pipeline.Compressor[R]
	decomp *pipeline.Decompressor[R]
}

// NewPipeline wires records -> Compressor -> chunks -> Decompressor -> records with
// mailboxes of the given capacity. The options apply to both stages.
func NewPipeline[R any](s record.Serializer[R], capacity int, opts ...pipeline.Option) (*Pipeline[R], error) {
	p := &Pipeline[R]{
		in:     pipeline.NewMailbox[R](capacity),
		chunks: pipeline.NewMailbox[[]byte](capacity),
		out:    pipeline.NewMailbox[R](capacity),
	}

	var err error
	if p.comp, err = pipeline.NewCompressor(p.in, p.chunks, s, opts...); err != nil {
		return nil, err
	}
	if p.decomp, err = pipeline.NewDecompressor(p.chunks, p.out, s, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// In returns the mailbox records are sent to. Close it to drain the pipeline.
func (p *Pipeline[R]) In() *pipeline.Mailbox[R] {
	return p.in
}

// Out returns the mailbox decoded records arrive in. It is closed once the pipeline is drained.
func (p *Pipeline[R]) Out() *pipeline.Mailbox[R] {
	return p.out
}

// Run runs both stages until the input is drained or a stage fails.
func (p *Pipeline[R]) Run(ctx context.Context) error {
	return pipeline.RunStages(ctx, p.comp, p.decomp)
}

// ChunkID returns the 64-bit xxHash of a chunk, the identifier used in log fields.
func ChunkID(data []byte) uint64 {
	return hash.ChunkID(data)
}
