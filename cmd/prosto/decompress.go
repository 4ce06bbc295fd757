package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/onsails/prosto/errs"
	"github.com/onsails/prosto/pipeline"
	"github.com/onsails/prosto/record"
)

// DecompressCommand reads a length-framed chunk stream from stdin and writes one record
// per line to stdout.
type DecompressCommand struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c *DecompressCommand) Help() string {
	helpText := `
Usage: prosto decompress [options] < chunks > records

  Reads a chunk stream produced by "prosto compress" and writes every record on
  its own line. A truncated or unreadable stream is reported as an upstream
  failure after all complete chunks have been written.

Options:
` + commonOptionsHelp

	return strings.TrimSpace(helpText)
}

func (c *DecompressCommand) Synopsis() string {
	return "Unpacks compressed chunks into newline-delimited records"
}

func (c *DecompressCommand) Run(args []string) int {
	var flags commonFlags

	cmdFlags := flag.NewFlagSet("decompress", flag.ContinueOnError)
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

	out := bufio.NewWriter(c.Stdout)
	defer out.Flush()

	records := pipeline.TryDecompress(readFrames(c.Stdin), record.Raw{}, config.pipelineOptions(logger, metrics)...)
	for r, err := range records {
		if err != nil {
			entry := logger.WithError(err).WithField("kind", errs.KindOf(err).String())
			if errs.KindOf(err) == errs.KindUpstream {
				entry.Error("Reading chunk stream failed")
			} else {
				entry.Error("Decoding chunk failed")
			}

			return 1
		}

		if c.Ctx.Err() != nil {
			logger.Warn("Interrupted")
			return 1
		}

		_, _ = out.Write(r)
		if err := out.WriteByte('\n'); err != nil {
			logger.WithError(err).Error("Writing records failed")
			return 1
		}
	}

	return 0
}
