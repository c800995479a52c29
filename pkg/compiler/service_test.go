package compiler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/exprgraph/pkg/document"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
)

const parallaxYAML = `
name: parallax
objects:
  scroller:
    type: Windows.UI.Composition.CompositionPropertySet
    kind: manipulation_property_set
constants:
  ratio: {scalar: 0.5}
expression:
  fn: mul
  args:
    - {get: Translation, from: {ref: scroller}}
    - {param: ratio, shape: scalar}
`

const fadeYAML = `
objects:
  card: {type: Windows.UI.Composition.SpriteVisual}
expression:
  fn: clamp
  args:
    - {get: Opacity, from: {ref: card}}
    - 0
    - 1
`

const brokenYAML = `
expression:
  fn: add
  args:
    - 1
`

func newTestService(t *testing.T, opts Options) (*Service, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	opts.Tracer = tp.Tracer("test")

	return NewService(opts), recorder
}

func TestCompile(t *testing.T) {
	t.Parallel()

	svc, recorder := newTestService(t, Options{})

	artifact, err := svc.Compile(context.Background(), "", []byte(parallaxYAML))
	require.NoError(t, err)

	assert.Equal(t, "parallax", artifact.Name)
	assert.Equal(t, "(CompositionPropertySet_1.Translation * ratio)", artifact.Expression)
	assert.Equal(t, 4, artifact.NodeCount)
	assert.Equal(t, HashSource([]byte(parallaxYAML)), artifact.SourceHash)
	assert.Len(t, artifact.SourceHash, 64)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "exprgraph.compile", spans[0].Name())
}

func TestCompileDefaultName(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{})

	artifact, err := svc.Compile(context.Background(), "", []byte(fadeYAML))
	require.NoError(t, err)
	assert.Equal(t, "expression", artifact.Name)
	assert.Equal(t, "Clamp(SpriteVisual_1.Opacity,0,1)", artifact.Expression)

	named, err := svc.Compile(context.Background(), "fade", []byte(fadeYAML))
	require.NoError(t, err)
	assert.Equal(t, "fade", named.Name)
	assert.Equal(t, "expression", artifact.Name, "cached artifact is not renamed in place")
}

func TestCompileCachesByContent(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{})
	ctx := context.Background()

	first, err := svc.Compile(ctx, "", []byte(parallaxYAML))
	require.NoError(t, err)

	second, err := svc.Compile(ctx, "", []byte(parallaxYAML))
	require.NoError(t, err)

	assert.Same(t, first, second)

	stats := svc.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)

	snapshot := svc.CacheSnapshot()
	assert.Equal(t, int64(1), snapshot.Entries)
	assert.Equal(t, first.Size(), snapshot.Bytes)
}

func TestCompileNameOverrideNotCached(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name  string
		bytes int64
	}{
		{name: "cached", bytes: 0},
		{name: "uncached", bytes: -1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewService(Options{CacheBytes: tt.bytes})
			ctx := context.Background()

			overridden, err := svc.Compile(ctx, "hero", []byte(parallaxYAML))
			require.NoError(t, err)
			assert.Equal(t, "hero", overridden.Name)

			plain, err := svc.Compile(ctx, "", []byte(parallaxYAML))
			require.NoError(t, err)
			assert.Equal(t, "parallax", plain.Name)

			again, err := svc.Compile(ctx, "hero", []byte(parallaxYAML))
			require.NoError(t, err)
			assert.Equal(t, "hero", again.Name)
			assert.Equal(t, "parallax", plain.Name)
		})
	}
}

func TestCompileCacheDisabled(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{CacheBytes: -1})
	ctx := context.Background()

	first, err := svc.Compile(ctx, "", []byte(parallaxYAML))
	require.NoError(t, err)

	second, err := svc.Compile(ctx, "", []byte(parallaxYAML))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, svc.CacheStats().Entries)
}

func TestCompileFailureRecordsSpanAndLog(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc, recorder := newTestService(t, Options{Logger: logger})

	_, err := svc.Compile(context.Background(), "broken", []byte(brokenYAML))
	require.Error(t, err)

	var pathErr *document.PathError
	require.ErrorAs(t, err, &pathErr)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, logs.String(), "compile failed")
	assert.Equal(t, 0, svc.CacheStats().Entries)
}

func TestCompileRecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	stats, err := observability.NewCompileMetrics(meter)
	require.NoError(t, err)

	svc := NewService(Options{Metrics: red, CompileMetrics: stats})
	ctx := context.Background()

	_, err = svc.Compile(ctx, "", []byte(parallaxYAML))
	require.NoError(t, err)

	_, err = svc.Compile(ctx, "", []byte(brokenYAML))
	require.Error(t, err)

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(ctx, &rm))

	requests := findSum(t, rm, "exprgraph.requests.total")
	assert.Equal(t, int64(2), requests)

	errorsTotal := findSum(t, rm, "exprgraph.errors.total")
	assert.Equal(t, int64(1), errorsTotal)

	lookups := findSum(t, rm, "exprgraph.cache.lookups.total")
	assert.Equal(t, int64(1), lookups, "failed compiles record no lookup")
}

func TestCompileAllKeepsInputOrder(t *testing.T) {
	t.Parallel()

	svc, recorder := newTestService(t, Options{Workers: 2})

	inputs := make([]Input, 0, 6)
	for idx := range 6 {
		data := parallaxYAML
		if idx%2 == 1 {
			data = fadeYAML
		}

		inputs = append(inputs, Input{Name: fmt.Sprintf("doc-%d", idx), Data: []byte(data)})
	}

	artifacts, err := svc.CompileAll(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, artifacts, len(inputs))

	for idx, artifact := range artifacts {
		assert.Equal(t, inputs[idx].Name, artifact.Name)
	}

	assert.Contains(t, artifacts[1].Expression, "Clamp(")
	assert.Contains(t, artifacts[0].Expression, "Translation")

	var batchSpans int

	for _, span := range recorder.Ended() {
		if span.Name() == "exprgraph.compile_all" {
			batchSpans++
		}
	}

	assert.Equal(t, 1, batchSpans)
}

func TestCompileAllFailsFast(t *testing.T) {
	t.Parallel()

	svc := NewService(Options{Workers: 1})

	_, err := svc.CompileAll(context.Background(), []Input{
		{Name: "good", Data: []byte(parallaxYAML)},
		{Name: "bad", Data: []byte(brokenYAML)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: ")
}

func TestCompileAllLabelsErrors(t *testing.T) {
	t.Parallel()

	_, err := NewService(Options{}).CompileAll(context.Background(), []Input{
		{Label: "scenes/broken.yaml", Data: []byte(brokenYAML)},
	})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "scenes/broken.yaml: "), err.Error())
}

func TestCompileAllLogsDocument(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	inner := slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "exprgraph", "", observability.ModeCLI))

	_, err := NewService(Options{Logger: logger}).CompileAll(context.Background(), []Input{
		{Label: "scenes/broken.yaml", Data: []byte(brokenYAML)},
	})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "document=scenes/broken.yaml")
}

func TestCompileAllEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewService(Options{}).CompileAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoInputs)
}

func TestCompileAllCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(Options{}).CompileAll(ctx, []Input{{Name: "a", Data: []byte(parallaxYAML)}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	svc, recorder := newTestService(t, Options{})

	problems, err := svc.Validate(context.Background(), []byte(parallaxYAML))
	require.NoError(t, err)
	assert.Empty(t, problems)

	problems, err = svc.Validate(context.Background(), []byte("name: x\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, problems)

	assert.Len(t, recorder.Ended(), 2)
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, name)

			var total int64
			for _, point := range sum.DataPoints {
				total += point.Value
			}

			return total
		}
	}

	t.Fatalf("metric %s not found", name)

	return 0
}
