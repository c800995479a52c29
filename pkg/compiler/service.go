package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/exprgraph/pkg/cache"
	"github.com/Sumatoshi-tech/exprgraph/pkg/document"
	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
	"github.com/Sumatoshi-tech/exprgraph/pkg/textutil"
)

// Span and metric operation names.
const (
	spanCompile    = "exprgraph.compile"
	spanCompileAll = "exprgraph.compile_all"
	spanValidate   = "exprgraph.validate"

	opCompile  = "compile"
	opValidate = "validate"
)

// defaultName names artifacts whose document declares no name.
const defaultName = "expression"

// ErrNoInputs is returned by CompileAll for an empty batch.
var ErrNoInputs = errors.New("no documents to compile")

// Options configures a Service. Zero-value fields use defaults.
type Options struct {
	// CacheBytes bounds the artifact cache. Zero uses cache.DefaultMaxBytes;
	// negative disables caching.
	CacheBytes int64

	// Workers bounds CompileAll parallelism. Zero uses GOMAXPROCS.
	Workers int

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Tracer is an optional OTel tracer. Nil disables tracing.
	Tracer trace.Tracer

	// Metrics is an optional RED metrics recorder.
	Metrics *observability.REDMetrics

	// CompileMetrics is an optional recorder for expression statistics.
	CompileMetrics *observability.CompileMetrics
}

// Service compiles documents, caching artifacts by content hash.
// It is safe for concurrent use.
type Service struct {
	cache   *cache.LRU[*Artifact]
	workers int
	logger  *slog.Logger
	tracer  trace.Tracer
	red     *observability.REDMetrics
	stats   *observability.CompileMetrics
}

// Input is one document in a CompileAll batch.
type Input struct {
	// Name overrides the document name when set.
	Name string
	// Label identifies the input in errors, usually its file path.
	// Empty falls back to Name.
	Label string
	Data  []byte
}

func (input Input) label() string {
	if input.Label != "" {
		return input.Label
	}

	return input.Name
}

// NewService creates a compile service.
func NewService(opts Options) *Service {
	svc := &Service{
		workers: opts.Workers,
		logger:  opts.Logger,
		tracer:  opts.Tracer,
		red:     opts.Metrics,
		stats:   opts.CompileMetrics,
	}

	if opts.CacheBytes >= 0 {
		svc.cache = cache.NewLRU[*Artifact](opts.CacheBytes)
	}

	if svc.workers <= 0 {
		svc.workers = runtime.GOMAXPROCS(0)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}

	if svc.tracer == nil {
		svc.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return svc
}

// Compile compiles one document. An explicit name overrides the document's
// own name field.
func (s *Service) Compile(ctx context.Context, name string, data []byte) (*Artifact, error) {
	var artifact *Artifact

	err := s.red.Observe(ctx, opCompile, func(ctx context.Context) error {
		var compileErr error

		artifact, compileErr = s.compile(ctx, name, data)

		return compileErr
	})
	if err != nil {
		return nil, err
	}

	return artifact, nil
}

func (s *Service) compile(ctx context.Context, name string, data []byte) (*Artifact, error) {
	if _, tagged := observability.DocumentFromContext(ctx); !tagged {
		ctx = observability.WithDocument(ctx, name)
	}

	ctx, span := s.tracer.Start(ctx, spanCompile, trace.WithAttributes(
		attribute.String("document.name", name),
		attribute.Int("document.bytes", len(data)),
		attribute.Int("document.lines", textutil.CountLines(data)),
	))
	defer span.End()

	hash := HashSource(data)

	if cached, ok := s.lookup(hash); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.stats.RecordCompile(ctx, compileStats(cached, true))
		s.logger.DebugContext(ctx, "artifact cache hit", "name", name, "hash", hash[:12])

		return cached.withName(name), nil
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	artifact, err := build(hash, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "compile failed", "name", name, "error", err)

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("expression.nodes", artifact.NodeCount),
		attribute.Int("expression.references", len(artifact.References)),
		attribute.Int("expression.constants", len(artifact.Constants)),
	)

	if s.cache != nil {
		s.cache.Put(hash, artifact)
	}

	s.stats.RecordCompile(ctx, compileStats(artifact, false))
	s.logger.DebugContext(ctx, "artifact compiled",
		"name", artifact.Name, "hash", hash[:12], "nodes", artifact.NodeCount)

	return artifact.withName(name), nil
}

// build compiles data under the document's own name. Overrides are applied
// by the caller so the cached artifact never carries one.
func build(hash string, data []byte) (*Artifact, error) {
	doc, err := document.Parse(data)
	if err != nil {
		return nil, err
	}

	root, err := doc.Build()
	if err != nil {
		return nil, err
	}

	compiled, err := expr.Compile(root)
	if err != nil {
		return nil, err
	}

	name := doc.Name
	if name == "" {
		name = defaultName
	}

	return newArtifact(name, hash, compiled), nil
}

func (s *Service) lookup(hash string) (*Artifact, bool) {
	if s.cache == nil {
		return nil, false
	}

	return s.cache.Get(hash)
}

func compileStats(artifact *Artifact, hit bool) observability.CompileStats {
	return observability.CompileStats{
		Nodes:      artifact.NodeCount,
		References: len(artifact.References),
		Constants:  len(artifact.Constants),
		CacheHit:   hit,
	}
}

// CompileAll compiles inputs with at most Workers in flight and returns the
// artifacts in input order. The first failure cancels the rest and is
// returned wrapped with the input's name.
func (s *Service) CompileAll(ctx context.Context, inputs []Input) ([]*Artifact, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	ctx, span := s.tracer.Start(ctx, spanCompileAll, trace.WithAttributes(
		attribute.Int("batch.size", len(inputs)),
		attribute.Int("batch.workers", s.workers),
	))
	defer span.End()

	artifacts := make([]*Artifact, len(inputs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for idx, input := range inputs {
		group.Go(func() error {
			err := groupCtx.Err()
			if err != nil {
				return err
			}

			artifact, err := s.Compile(observability.WithDocument(groupCtx, input.label()), input.Name, input.Data)
			if err != nil {
				return fmt.Errorf("%s: %w", input.label(), err)
			}

			artifacts[idx] = artifact

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	return artifacts, nil
}

// Validate checks data against the document schema. A non-empty result
// means the document is structurally invalid.
func (s *Service) Validate(ctx context.Context, data []byte) ([]document.ValidationError, error) {
	var problems []document.ValidationError

	err := s.red.Observe(ctx, opValidate, func(ctx context.Context) error {
		_, span := s.tracer.Start(ctx, spanValidate, trace.WithAttributes(
			attribute.Int("document.bytes", len(data)),
		))
		defer span.End()

		var validateErr error

		problems, validateErr = document.Validate(data)
		if validateErr != nil {
			span.RecordError(validateErr)
			span.SetStatus(codes.Error, validateErr.Error())

			return validateErr
		}

		span.SetAttributes(attribute.Int("document.problems", len(problems)))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return problems, nil
}

// CacheStats returns the artifact cache counters. A disabled cache reports
// zero values.
func (s *Service) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}

	return s.cache.Stats()
}

// CacheSnapshot adapts CacheStats for observability.RegisterCacheMetrics.
func (s *Service) CacheSnapshot() observability.CacheSnapshot {
	stats := s.CacheStats()

	return observability.CacheSnapshot{
		Entries: int64(stats.Entries),
		Bytes:   stats.CurrentSize,
	}
}
