// Package hash fingerprints chunks for logs and diagnostics.
//
// Fingerprints identify a chunk in log lines and in the inspect command. They are not
// stored in the chunk and are never used to validate data.
package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ChunkID computes the xxHash64 of a chunk's bytes.
func ChunkID(chunk []byte) uint64 {
	return xxhash.Sum64(chunk)
}

// ChunkIDString returns ChunkID as a fixed-width lowercase hex string.
func ChunkIDString(chunk []byte) string {
	return fmt.Sprintf("%016x", ChunkID(chunk))
}
