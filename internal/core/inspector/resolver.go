package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
	"typeinspector/internal/core/ports"
	"typeinspector/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver computes the status text for one buffer position. It never
// returns an error: every failure folds into one of the fixed results.
type Resolver struct {
	syntax  ports.SyntaxProvider
	backend ports.TypeBackend
}

func NewResolver(syntax ports.SyntaxProvider, backend ports.TypeBackend) *Resolver {
	return &Resolver{syntax: syntax, backend: backend}
}

func (r *Resolver) Resolve(ctx context.Context, buffer ports.BufferID, offset int) (result TypeQueryResult) {
	_, span := observability.Tracer.Start(ctx, "resolver.Resolve", trace.WithAttributes(
		attribute.String("buffer", string(buffer)),
		attribute.Int("offset", offset),
	))
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			observability.BackendFaultsTotal.Inc()
			slog.Error("type resolution panicked",
				"buffer", buffer,
				"offset", offset,
				"panic", rec,
				"stack", string(debug.Stack()))
			span.SetStatus(codes.Error, fmt.Sprint(rec))
			result = ResultNoTypeRecognized
		}
		outcome := outcomeLabel(result)
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		observability.ResolutionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		observability.ResolutionsTotal.WithLabelValues(outcome).Inc()
	}()

	root, ok := r.syntax.SyntaxTreeOf(buffer)
	if !ok || root == nil {
		return ResultNoFileFound
	}
	defer root.Close()

	leaf, ok := root.ElementAt(offset)
	if !ok {
		return ResultNoVariableFound
	}
	binding, ok := r.syntax.NearestEnclosing(leaf, ports.KindVariableBinding)
	if !ok {
		return ResultNoVariableFound
	}
	return r.infer(binding, root, span)
}

func (r *Resolver) infer(binding ports.SyntaxNode, root ports.SyntaxRoot, span trace.Span) TypeQueryResult {
	session, err := r.backend.BeginRead()
	if err != nil {
		return r.fault(err, span)
	}
	defer session.Release()

	desc, ok, err := session.InferType(binding, root)
	if err != nil {
		return r.fault(err, span)
	}
	if !ok || desc == nil {
		return ResultNoTypeRecognized
	}
	return TypeResult(desc.DisplayName())
}

func (r *Resolver) fault(err error, span trace.Span) TypeQueryResult {
	observability.BackendFaultsTotal.Inc()
	slog.Warn("type backend failed", "error", err)
	span.RecordError(err)
	return ResultNoTypeRecognized
}

func outcomeLabel(result TypeQueryResult) string {
	switch result {
	case ResultNoTypeRecognized:
		return "no_type"
	case ResultNoVariableFound:
		return "no_variable"
	case ResultNoFileFound:
		return "no_file"
	}
	return "type"
}
