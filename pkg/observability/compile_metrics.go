package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricNodesPerExpression = "exprgraph.compile.nodes"
	metricReferencesTotal    = "exprgraph.compile.references.total"
	metricConstantsTotal     = "exprgraph.compile.constants.total"
	metricCacheLookups       = "exprgraph.cache.lookups.total"
	metricCacheEntries       = "exprgraph.cache.entries"
	metricCacheBytes         = "exprgraph.cache.bytes"

	attrResult = "result"
)

var nodeBucketBoundaries = []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000}

// CompileMetrics holds OTel instruments describing compiled expressions.
type CompileMetrics struct {
	nodes        metric.Int64Histogram
	references   metric.Int64Counter
	constants    metric.Int64Counter
	cacheLookups metric.Int64Counter
}

// CompileStats describes one compile request.
type CompileStats struct {
	Nodes      int
	References int
	Constants  int
	CacheHit   bool
}

// CacheSnapshot is a point-in-time view of the artifact cache.
type CacheSnapshot struct {
	Entries int64
	Bytes   int64
}

// NewCompileMetrics creates compile metric instruments from the given meter.
func NewCompileMetrics(mt metric.Meter) (*CompileMetrics, error) {
	nodes, err := mt.Int64Histogram(metricNodesPerExpression,
		metric.WithDescription("Distinct nodes per compiled expression"),
		metric.WithUnit("{node}"),
		metric.WithExplicitBucketBoundaries(nodeBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNodesPerExpression, err)
	}

	refs, err := mt.Int64Counter(metricReferencesTotal,
		metric.WithDescription("Reference parameters emitted"),
		metric.WithUnit("{reference}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReferencesTotal, err)
	}

	consts, err := mt.Int64Counter(metricConstantsTotal,
		metric.WithDescription("Constant parameters emitted"),
		metric.WithUnit("{constant}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricConstantsTotal, err)
	}

	lookups, err := mt.Int64Counter(metricCacheLookups,
		metric.WithDescription("Artifact cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheLookups, err)
	}

	return &CompileMetrics{
		nodes:        nodes,
		references:   refs,
		constants:    consts,
		cacheLookups: lookups,
	}, nil
}

// RecordCompile records one compile request. Safe to call on a nil receiver.
func (cm *CompileMetrics) RecordCompile(ctx context.Context, stats CompileStats) {
	if cm == nil {
		return
	}

	result := "miss"
	if stats.CacheHit {
		result = "hit"
	}

	cm.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))

	if stats.CacheHit {
		return
	}

	cm.nodes.Record(ctx, int64(stats.Nodes))
	cm.references.Add(ctx, int64(stats.References))
	cm.constants.Add(ctx, int64(stats.Constants))
}

// RegisterCacheMetrics exposes cache occupancy as observable gauges read from
// snapshot at collection time. A nil snapshot registers nothing.
func RegisterCacheMetrics(mt metric.Meter, snapshot func() CacheSnapshot) error {
	if snapshot == nil {
		return nil
	}

	entries, err := mt.Int64ObservableGauge(metricCacheEntries,
		metric.WithDescription("Artifacts held in the cache"),
		metric.WithUnit("{artifact}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheEntries, err)
	}

	bytes, err := mt.Int64ObservableGauge(metricCacheBytes,
		metric.WithDescription("Approximate bytes held in the cache"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheBytes, err)
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		snap := snapshot()
		obs.ObserveInt64(entries, snap.Entries)
		obs.ObserveInt64(bytes, snap.Bytes)

		return nil
	}, entries, bytes)
	if err != nil {
		return fmt.Errorf("register cache callback: %w", err)
	}

	return nil
}
