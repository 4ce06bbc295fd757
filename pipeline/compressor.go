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

// Compressor is the actor stage that packs records from one mailbox into chunks sent to another.
type Compressor[R any] struct {
	in  *Mailbox[R]
	out *Mailbox[[]byte]
	s   record.Serializer[R]
	cfg *Config
	log logrus.Ext1FieldLogger
}

var _ Stage = (*Compressor[any])(nil)

// NewCompressor creates a compress stage reading records from in and sending chunks to out.
func NewCompressor[R any](in *Mailbox[R], out *Mailbox[[]byte], s record.Serializer[R], opts ...Option) (*Compressor[R], error) {
	if s == nil {
		return nil, errs.ErrNilSerializer
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Compressor[R]{
		in:  in,
		out: out,
		s:   s,
		cfg: cfg,
		log: cfg.log.WithField("stage", StageCompress),
	}, nil
}

// Run receives records until in is closed and drained, sealing a chunk whenever the
// compressed size reaches the configured chunk size. The trailing chunk is sent only if
// it holds at least one record.
//
// out is closed when Run returns. On failure in is dropped, so the producer's next Send
// fails with a KindChannelClosed error.
func (c *Compressor[R]) Run(ctx context.Context) (err error) {
	defer c.out.Close()
	defer func() {
		if err != nil {
			c.in.Drop()
			c.cfg.metrics.recordError(StageCompress, err)
			c.log.WithError(err).Error("Compress stage failed")
		}
	}()

	enc, err := c.newEncoder()
	if err != nil {
		return err
	}
	defer func() {
		enc.Abort()
	}()

	for {
		r, err := c.in.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		n, err := enc.Write(r)
		if err != nil {
			return err
		}
		c.cfg.metrics.recordRecords(StageCompress, 1, record.FrameLen(n))

		if enc.CompressedLen() < c.cfg.chunkSize {
			continue
		}

		if err := c.seal(ctx, enc); err != nil {
			return err
		}
		if enc, err = c.newEncoder(); err != nil {
			return err
		}
	}

	c.log.Trace("Input closed, sealing trailing chunk")

	return c.seal(ctx, enc)
}

func (c *Compressor[R]) newEncoder() (*chunk.Encoder[R], error) {
	return chunk.NewEncoder(c.s, c.cfg.encoderOptions()...)
}

// seal finishes enc and sends the chunk if it is not empty.
func (c *Compressor[R]) seal(ctx context.Context, enc *chunk.Encoder[R]) error {
	records := enc.Len()
	data, err := enc.Finish()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	c.cfg.metrics.recordChunk(StageCompress, len(data))
	c.log.WithFields(logrus.Fields{
		"records":   records,
		"chunk_len": len(data),
		"chunk_id":  hash.ChunkIDString(data),
	}).Debug("Sealed chunk")

	return c.out.Send(ctx, data)
}
