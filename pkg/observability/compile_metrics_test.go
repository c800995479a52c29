package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
)

func TestCompileMetrics_RecordCompile(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	cm, err := observability.NewCompileMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()

	cm.RecordCompile(ctx, observability.CompileStats{Nodes: 7, References: 2, Constants: 1})
	cm.RecordCompile(ctx, observability.CompileStats{Nodes: 7, References: 2, Constants: 1, CacheHit: true})

	rm := collectMetrics(t, reader)

	lookups := findMetric(rm, "exprgraph.cache.lookups.total")
	require.NotNil(t, lookups)

	sum, ok := lookups.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byResult := dataPointsByAttr(sum.DataPoints, "result")
	assert.Equal(t, int64(1), byResult["hit"])
	assert.Equal(t, int64(1), byResult["miss"])

	refs := findMetric(rm, "exprgraph.compile.references.total")
	require.NotNil(t, refs)

	refSum, ok := refs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, refSum.DataPoints, 1)
	assert.Equal(t, int64(2), refSum.DataPoints[0].Value, "cache hits are not counted twice")

	assert.NotNil(t, findMetric(rm, "exprgraph.compile.nodes"))
}

func TestCompileMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var cm *observability.CompileMetrics

	assert.NotPanics(t, func() {
		cm.RecordCompile(context.Background(), observability.CompileStats{Nodes: 1})
	})
}

func TestCacheMetrics_Exported(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	err := observability.RegisterCacheMetrics(meter, func() observability.CacheSnapshot {
		return observability.CacheSnapshot{Entries: 3, Bytes: 512}
	})
	require.NoError(t, err)

	rm := collectMetrics(t, reader)

	entries := findMetric(rm, "exprgraph.cache.entries")
	require.NotNil(t, entries)

	gauge, ok := entries.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)

	size := findMetric(rm, "exprgraph.cache.bytes")
	require.NotNil(t, size)

	sizeGauge, ok := size.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(512), sizeGauge.DataPoints[0].Value)
}

func TestCacheMetrics_NilSnapshot(t *testing.T) {
	t.Parallel()

	meter := sdkmetric.NewMeterProvider().Meter("test")

	require.NoError(t, observability.RegisterCacheMetrics(meter, nil))
}

// dataPointsByAttr extracts data points keyed by the value of attribute key.
func dataPointsByAttr(dps []metricdata.DataPoint[int64], key string) map[string]int64 {
	m := make(map[string]int64, len(dps))

	for _, dp := range dps {
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == key {
				m[attr.Value.AsString()] = dp.Value
			}
		}
	}

	return m
}
