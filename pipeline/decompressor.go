package pipeline

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/internal/hash"
	"github.com/onsails/prosto/record"
)

// Decompressor is the actor stage that unpacks chunks from one mailbox into records sent to another.
type Decompressor[R any] struct {
	in  *Mailbox[[]byte]
	out *Mailbox[R]
	s   record.Serializer[R]
	cfg *Config
	log logrus.Ext1FieldLogger
}

var _ Stage = (*Decompressor[any])(nil)

// NewDecompressor creates a decompress stage reading chunks from in and sending records to out.
func NewDecompressor[R any](in *Mailbox[[]byte], out *Mailbox[R], s record.Serializer[R], opts ...Option) (*Decompressor[R], error) {
	if s == nil {
		return nil, errs.ErrNilSerializer
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Decompressor[R]{
		in:  in,
		out: out,
		s:   s,
		cfg: cfg,
		log: cfg.log.WithField("stage", StageDecompress),
	}, nil
}

// Run decodes every chunk received from in and sends its records to out in order.
//
// Codec and deserialization failures are fatal. out is closed when Run returns; on
// failure in is dropped.
func (d *Decompressor[R]) Run(ctx context.Context) (err error) {
	defer d.out.Close()
	defer func() {
		if err != nil {
			d.in.Drop()
			d.cfg.metrics.recordError(StageDecompress, err)
			d.log.WithError(err).Error("Decompress stage failed")
		}
	}()

	for {
		data, err := d.in.Recv(ctx)
		if err == io.EOF {
			d.log.Trace("Input closed")
			return nil
		}
		if err != nil {
			return err
		}

		if err := d.forward(ctx, data); err != nil {
			return err
		}
	}
}

func (d *Decompressor[R]) forward(ctx context.Context, data []byte) error {
	dec, err := chunk.NewDecoder(d.s, data, d.cfg.decoderOptions()...)
	if err != nil {
		return err
	}
	d.cfg.metrics.recordChunk(StageDecompress, len(data))

	records := 0
	for r, err := range dec.All() {
		if err != nil {
			return err
		}
		if err := d.out.Send(ctx, r); err != nil {
			return err
		}
		records++
	}
	d.cfg.metrics.recordRecords(StageDecompress, records, dec.Len())

	d.log.WithFields(logrus.Fields{
		"records":   records,
		"chunk_len": len(data),
		"chunk_id":  hash.ChunkIDString(data),
	}).Debug("Decoded chunk")

	return nil
}
