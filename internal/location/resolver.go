// internal/location/resolver.go
package location

import (
	"context"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
)

// DefaultMaxAttempts bounds the interactive refine loop.
const DefaultMaxAttempts = 3

// Resolver orchestrates discovery, disambiguation and detail lookup.
// It holds no per-request state; one Resolver serves concurrent Resolve
// calls.
type Resolver struct {
	discovery   Discoverer
	details     DetailsFetcher
	strategy    Strategy
	maxAttempts int
	logger      logger.Logger
}

func NewResolver(discovery Discoverer, details DetailsFetcher, strategy Strategy, maxAttempts int, log logger.Logger) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{
		discovery:   discovery,
		details:     details,
		strategy:    strategy,
		maxAttempts: maxAttempts,
		logger:      log.With(map[string]interface{}{"component": "location-resolver"}),
	}
}

// Resolve runs one query to a terminal outcome.
func (r *Resolver) Resolve(ctx context.Context, q Query) Outcome {
	out := r.resolve(ctx, q, 1)
	r.record(q.Role, out)
	return out
}

func (r *Resolver) resolve(ctx context.Context, q Query, attempt int) Outcome {
	if attempt > r.maxAttempts {
		return failed(cerrors.NewTooManyAttemptsError(string(q.Role), r.maxAttempts))
	}

	// An explicit identifier bypasses discovery entirely.
	if q.Identifier != "" {
		return r.resolveIdentifier(ctx, q.Role, q.Identifier)
	}

	candidates, err := r.discovery.Discover(ctx, q.Text)
	if err != nil {
		// Discovery degrades every transient fault internally; an error
		// here is the fatal missing-credential case.
		stdErr, ok := err.(*cerrors.StandardError)
		if !ok {
			stdErr = cerrors.NewUpstreamTransientError("places", err)
		}
		return failed(stdErr)
	}

	switch len(candidates) {
	case 0:
		return failed(cerrors.NewNoResultsError(string(q.Role), q.Text))
	case 1:
		return r.resolveIdentifier(ctx, q.Role, candidates[0].Identifier)
	default:
		r.logger.Debug("ambiguous query", map[string]interface{}{
			"role":       string(q.Role),
			"query":      q.Text,
			"candidates": len(candidates),
			"attempt":    attempt,
		})
		return r.strategy.ResolveAmbiguity(ctx, r, q, candidates, attempt)
	}
}

func (r *Resolver) resolveIdentifier(ctx context.Context, role Role, identifier string) Outcome {
	loc, err := r.details.Fetch(ctx, identifier)
	if err != nil || loc == nil {
		return failed(cerrors.NewDetailResolutionError(string(role)))
	}
	return resolved(loc)
}

func (r *Resolver) record(role Role, out Outcome) {
	status := string(out.Status)
	if out.Status == StatusFailed && out.Err != nil {
		status = string(out.Err.Code)
	}
	metrics.ResolutionOutcomes.WithLabelValues(status, string(role)).Inc()
}
