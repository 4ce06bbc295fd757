package pipeline

import (
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/internal/testrecord"
)

func TestMetrics_Transforms(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg, "prosto", "test")

	s := testrecord.Serializer()
	records := testrecord.Sequential(10)

	chunks := collectChunks(t, Compress(slices.Values(records), s, WithChunkSize(0), WithMetrics(m)))
	_, err := collectRecords(Decompress(slices.Values(chunks), s, WithMetrics(m)))
	require.NoError(t, err)

	require.InDelta(t, 10, testutil.ToFloat64(m.records.WithLabelValues(StageCompress)), 0)
	require.InDelta(t, 10, testutil.ToFloat64(m.records.WithLabelValues(StageDecompress)), 0)
	require.InDelta(t, 10, testutil.ToFloat64(m.chunks.WithLabelValues(StageCompress)), 0)
	require.InDelta(t, 10, testutil.ToFloat64(m.chunks.WithLabelValues(StageDecompress)), 0)

	var total int
	for _, data := range chunks {
		total += len(data)
	}
	for _, stage := range []string{StageCompress, StageDecompress} {
		require.InDelta(t, float64(total), testutil.ToFloat64(m.bytes.WithLabelValues(stage, formCompressed)), 0, stage)
	}

	var serialized int
	for _, data := range chunks {
		dec, err := chunk.NewDecoder(s, data)
		require.NoError(t, err)
		serialized += dec.Len()
	}
	require.Positive(t, serialized)
	for _, stage := range []string{StageCompress, StageDecompress} {
		require.InDelta(t, float64(serialized), testutil.ToFloat64(m.bytes.WithLabelValues(stage, formSerialized)), 0, stage)
	}

	count, err := testutil.GatherAndCount(reg, "prosto_test_chunk_size_bytes")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMetrics_Errors(t *testing.T) {
	m := NewMetrics(nil, "", "")

	_, err := collectRecords(Decompress(slices.Values([][]byte{[]byte("garbage")}), testrecord.Serializer(), WithMetrics(m)))
	require.Error(t, err)

	require.InDelta(t, 1, testutil.ToFloat64(m.errors.WithLabelValues(StageDecompress, "codec")), 0)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.recordRecords(StageCompress, 1, 10)
		m.recordChunk(StageCompress, 10)
		m.recordError(StageCompress, nil)
	})
}
