package format

import (
	"fmt"
	"strings"
)

// CompressionType identifies the codec a chunk was compressed with.
//
// The type is not stored inside a chunk. Both ends of a pipeline must agree on it.
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 frame compression.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy represents framed Snappy compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}

// ParseCompressionType converts a case-insensitive name ("zstd", "s2", "lz4",
// "snappy", "none") into a CompressionType.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return CompressionNone, nil
	case "zstd", "zstandard":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	default:
		return 0, fmt.Errorf("unknown compression type %q", name)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CompressionType) UnmarshalText(text []byte) error {
	ct, err := ParseCompressionType(string(text))
	if err != nil {
		return err
	}
	*c = ct

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c CompressionType) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(c.String())), nil
}
