package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"google.golang.org/protobuf/encoding/protowire"
)

// maxFrameSize bounds a single chunk read from a stream.
const maxFrameSize = 64 * 1024 * 1024

// frameWriter writes chunks as uvarint length + bytes.
type frameWriter struct {
	w       *bufio.Writer
	scratch []byte
}

func newFrameWriter(w io.Writer) *frameWriter {
	return &frameWriter{w: bufio.NewWriter(w)}
}

func (fw *frameWriter) WriteFrame(data []byte) error {
	fw.scratch = protowire.AppendVarint(fw.scratch[:0], uint64(len(data)))
	if _, err := fw.w.Write(fw.scratch); err != nil {
		return err
	}
	_, err := fw.w.Write(data)

	return err
}

func (fw *frameWriter) Flush() error {
	return fw.w.Flush()
}

// readFrames returns the chunks of a length-framed stream. A read failure is yielded once
// and ends the sequence; a clean end of stream ends it without error.
func readFrames(r io.Reader) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		br := bufio.NewReader(r)
		for {
			size, err := binary.ReadUvarint(br)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read frame length: %w", err))
				return
			}
			if size > maxFrameSize {
				yield(nil, fmt.Errorf("frame of %d bytes exceeds limit of %d", size, maxFrameSize))
				return
			}

			data := make([]byte, size)
			if _, err := io.ReadFull(br, data); err != nil {
				yield(nil, fmt.Errorf("read frame: %w", err))
				return
			}
			if !yield(data, nil) {
				return
			}
		}
	}
}
