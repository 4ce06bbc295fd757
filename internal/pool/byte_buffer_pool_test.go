package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, bb.Cap(), "new buffer should have specified capacity")
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), bb.Bytes())

	_, _ = bb.Write([]byte(" world"))
	assert.Equal(t, []byte("hello world"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len(), "Reset should clear the buffer length")
	assert.Equal(t, capBefore, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())

	_, _ = bb.Write([]byte("pending"))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	// Oversized buffers are discarded; Put must not panic either way.
	big := NewByteBuffer(1024)
	p.Put(big)
	p.Put(nil)
}

func TestPendingPool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 100 {
				bb := GetPendingBuffer()
				_, _ = bb.Write([]byte{byte(i)})
				assert.Equal(t, 1, bb.Len())
				PutPendingBuffer(bb)
			}
		}(i)
	}
	wg.Wait()
}
