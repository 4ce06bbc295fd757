package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/onsails/prosto/pipeline"
	"github.com/onsails/prosto/record"
)

// CompressCommand packs newline-delimited records from stdin into a length-framed chunk
// stream on stdout, using the actor pipeline.
type CompressCommand struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c *CompressCommand) Help() string {
	helpText := `
Usage: prosto compress [options] < records > chunks

  Reads one record per line from stdin and writes compressed chunks to stdout.
  Each chunk is written as its uvarint length followed by the chunk bytes.

Options:
` + commonOptionsHelp

	return strings.TrimSpace(helpText)
}

func (c *CompressCommand) Synopsis() string {
	return "Packs newline-delimited records into compressed chunks"
}

func (c *CompressCommand) Run(args []string) int {
	var flags commonFlags

	cmdFlags := flag.NewFlagSet("compress", flag.ContinueOnError)
	cmdFlags.SetOutput(c.Stderr)
	flags.register(cmdFlags)
	if err := cmdFlags.Parse(args); err != nil {
		return 1
	}

	config, err := flags.resolve(cmdFlags)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error loading configuration: %s\n", err.Error())
		return 1
	}

	logger := config.newLogger()
	logger.SetOutput(c.Stderr)

	metrics, stopMetrics, err := startMetrics(config.MetricsAddr, logger)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error starting metrics server: %s\n", err.Error())
		return 1
	}
	defer stopMetrics()

	records := pipeline.NewMailbox[[]byte](config.MailboxCapacity)
	chunks := pipeline.NewMailbox[[]byte](config.MailboxCapacity)

	comp, err := pipeline.NewCompressor(records, chunks, record.Raw{}, config.pipelineOptions(logger, metrics)...)
	if err != nil {
		_, _ = fmt.Fprintf(c.Stderr, "Error creating compressor: %s\n", err.Error())
		return 1
	}

	out := newFrameWriter(c.Stdout)
	err = pipeline.RunStages(c.Ctx,
		lineReader(c.Stdin, records, config.MaxRecordSize),
		comp,
		frameSink(chunks, out),
	)
	if err != nil {
		logger.WithError(err).Error("Compression failed")
		return 1
	}

	return 0
}

// lineReader sends every line of r as a record and closes m at end of input.
func lineReader(r io.Reader, m *pipeline.Mailbox[[]byte], maxRecordSize int) pipeline.Stage {
	return pipeline.StageFunc(func(ctx context.Context) error {
		defer m.Close()

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, min(64*1024, maxRecordSize)), maxRecordSize)
		for scanner.Scan() {
			if err := m.Send(ctx, bytes.Clone(scanner.Bytes())); err != nil {
				return err
			}
		}

		return scanner.Err()
	})
}

// frameSink writes every chunk received from m to out.
func frameSink(m *pipeline.Mailbox[[]byte], out *frameWriter) pipeline.Stage {
	return pipeline.StageFunc(func(ctx context.Context) error {
		for {
			data, err := m.Recv(ctx)
			if err == io.EOF {
				return out.Flush()
			}
			if err != nil {
				return err
			}

			if err := out.WriteFrame(data); err != nil {
				m.Drop()
				return fmt.Errorf("write chunk: %w", err)
			}
		}
	})
}
