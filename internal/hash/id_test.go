package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		id   uint64
	}{
		{"empty chunk", nil, 0xef46db3751d8e999},
		{"short chunk", []byte("test"), 0x4fdcca5ddb678139},
		{"long chunk", []byte("this is a longer test string to hash"), 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ChunkID(tt.data))
		})
	}
}

func TestChunkIDString(t *testing.T) {
	assert.Equal(t, "4fdcca5ddb678139", ChunkIDString([]byte("test")))
	assert.Len(t, ChunkIDString([]byte("x")), 16)
	assert.Equal(t, "0004e8bb0dffcf5f", ChunkIDString([]byte("chunk-6")), "leading zeros are kept")
	assert.Equal(t, ChunkIDString([]byte("same")), ChunkIDString([]byte("same")))
	assert.NotEqual(t, ChunkIDString([]byte("a")), ChunkIDString([]byte("b")))
}
