// Package pipeline wires the chunk codec into streaming topologies.
//
// # Actor pipeline
//
// Compressor and Decompressor are stages that run in their own goroutines and talk only
// through bounded Mailboxes:
//
//	records := pipeline.NewMailbox[*pb.Update](64)
//	chunks := pipeline.NewMailbox[[]byte](4)
//	decoded := pipeline.NewMailbox[*pb.Update](64)
//
//	comp, _ := pipeline.NewCompressor(records, chunks, s, pipeline.WithChunkSize(256*1024))
//	decomp, _ := pipeline.NewDecompressor(chunks, decoded, s)
//
//	go func() { errc <- pipeline.RunStages(ctx, comp, decomp) }()
//
// A full mailbox blocks its producer. Closing the first mailbox drains the pipeline and
// closes every downstream mailbox in turn. A failing stage drops its input mailbox, so
// the failure reaches the producer as a KindChannelClosed error on its next Send.
//
// # Sequence transforms
//
// Compress, Decompress and TryDecompress express the same codec over iter.Seq values.
// They are demand driven: nothing is read from the input until the output is iterated.
//
//	for data, err := range pipeline.Compress(slices.Values(updates), s) {
//	    ...
//	}
package pipeline
