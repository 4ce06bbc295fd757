package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/compress"
	"github.com/onsails/prosto/internal/hash"
	"github.com/onsails/prosto/record"
)

// InspectCommand prints one line of statistics per chunk of a chunk stream.
type InspectCommand struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c *InspectCommand) Help() string {
	helpText := `
Usage: prosto inspect [options] < chunks

  Prints the record count, sizes, compression ratio and fingerprint of every
  chunk in a stream produced by "prosto compress".

Options:

	-compression=zstd  Compression algorithm the stream was written with
	-config=""         YAML configuration file
`

	return strings.TrimSpace(helpText)
}

func (c *InspectCommand) Synopsis() string {
	return "Prints per-chunk statistics of a chunk stream"
}

func (c *InspectCommand) Run(args []string) int {
	var flags commonFlags

	cmdFlags := flag.NewFlagSet("inspect", flag.ContinueOnError)
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

	tw := tabwriter.NewWriter(c.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CHUNK\tRECORDS\tCOMPRESSED\tDECOMPRESSED\tRATIO\tID")

	var total compress.CompressionStats
	total.Algorithm = config.Compression

	index := 0
	for data, err := range readFrames(c.Stdin) {
		if err != nil {
			_ = tw.Flush()
			_, _ = fmt.Fprintf(c.Stderr, "Error reading chunk %d: %s\n", index, err.Error())
			return 1
		}

		stats, records, err := inspectChunk(data, config)
		if err != nil {
			_ = tw.Flush()
			_, _ = fmt.Fprintf(c.Stderr, "Error decoding chunk %d: %s\n", index, err.Error())
			return 1
		}

		_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.3f\t%s\n",
			index, records, stats.CompressedSize, stats.OriginalSize, stats.CompressionRatio(), hash.ChunkIDString(data))

		total.OriginalSize += stats.OriginalSize
		total.CompressedSize += stats.CompressedSize
		index++
	}

	_, _ = fmt.Fprintf(tw, "total\t\t%d\t%d\t%.3f\t\n", total.CompressedSize, total.OriginalSize, total.CompressionRatio())
	if err := tw.Flush(); err != nil {
		return 1
	}

	return 0
}

func inspectChunk(data []byte, config *Config) (compress.CompressionStats, int, error) {
	dec, err := chunk.NewDecoder(record.Raw{}, data, chunk.WithDecompression(config.Compression))
	if err != nil {
		return compress.CompressionStats{}, 0, err
	}

	records := 0
	for _, err := range dec.All() {
		if err != nil {
			return compress.CompressionStats{}, 0, err
		}
		records++
	}

	return compress.CompressionStats{
		Algorithm:      config.Compression,
		OriginalSize:   int64(dec.Len()),
		CompressedSize: int64(len(data)),
	}, records, nil
}
