package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ProbeBuildResource exposes buildResource to external tests.
func ProbeBuildResource(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// ProbeSamplerSpan reports whether the sampler selected for cfg samples a
// root span.
func ProbeSamplerSpan(cfg Config) bool {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")

	result := selectSampler(cfg).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       traceID,
		Name:          "probe",
		Kind:          trace.SpanKindInternal,
	})

	return result.Decision == sdktrace.RecordAndSample
}
