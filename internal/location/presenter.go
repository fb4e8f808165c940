// internal/location/presenter.go
package location

import (
	"context"
	"fmt"
	"strings"
	"time"

	cerrors "cabs-workers/internal/common/errors"
)

// Strategy decides what happens when discovery returns two or more
// candidates. ReturnAsData ends the resolution with a disambiguation
// payload for the caller; Prompt blocks on a human round trip.
type Strategy interface {
	ResolveAmbiguity(ctx context.Context, r *Resolver, q Query, candidates []Candidate, attempt int) Outcome
}

// BuildDisambiguation numbers the candidates 1..N and renders the
// instruction message. Option zero ("none of these") is implicit: the
// caller either picks a number or refines the query.
func BuildDisambiguation(role Role, query string, candidates []Candidate) *Disambiguation {
	options := make([]Option, 0, len(candidates))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Multiple locations match '%s' for the %s. Please choose one:\n", query, role)
	for i, c := range candidates {
		options = append(options, Option{
			Number:     i + 1,
			Name:       c.Name,
			Address:    c.Address,
			Identifier: c.Identifier,
		})
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, c.Name, c.Address)
	}
	sb.WriteString("Reply with the option number, or answer 'none' and give a more specific location. ")
	fmt.Fprintf(&sb, "To skip this step, resubmit with the place_id of your choice as the %s identifier.", role)

	return &Disambiguation{
		Role:    role,
		Query:   query,
		Options: options,
		Message: sb.String(),
	}
}

// ReturnAsData is the stateless strategy: the disambiguation becomes the
// outcome and the caller resubmits with the chosen identifier.
type ReturnAsData struct{}

func (ReturnAsData) ResolveAmbiguity(ctx context.Context, r *Resolver, q Query, candidates []Candidate, attempt int) Outcome {
	return needsDisambiguation(BuildDisambiguation(q.Role, q.Text, candidates))
}

// Prompter is the capability the interactive strategy needs from its host:
// present numbered options and collect a choice, and collect a refined
// query when the human picked none of them.
type Prompter interface {
	// Choose returns the 1-based option number, or 0 for "none of these".
	Choose(ctx context.Context, d *Disambiguation) (int, error)
	// Refine returns a replacement free-text query for the role.
	Refine(ctx context.Context, role Role) (string, error)
}

// Prompt is the interactive strategy. Each human wait is bounded by
// Timeout; expiry or an error from the prompter ends the resolution with
// NO_SELECTION rather than suspending forever.
type Prompt struct {
	Prompter Prompter
	Timeout  time.Duration
}

func (p Prompt) ResolveAmbiguity(ctx context.Context, r *Resolver, q Query, candidates []Candidate, attempt int) Outcome {
	d := BuildDisambiguation(q.Role, q.Text, candidates)

	choiceCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		choiceCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	choice, err := p.Prompter.Choose(choiceCtx, d)
	if err != nil {
		return failed(cerrors.NewNoSelectionError(string(q.Role)))
	}

	if choice >= 1 && choice <= len(candidates) {
		return r.resolveIdentifier(ctx, q.Role, candidates[choice-1].Identifier)
	}

	// None of the options fit; ask for a better query and resolve it under
	// the same role.
	refineCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		refineCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	refined, err := p.Prompter.Refine(refineCtx, q.Role)
	if err != nil || strings.TrimSpace(refined) == "" {
		return failed(cerrors.NewNoSelectionError(string(q.Role)))
	}

	return r.resolve(ctx, Query{Text: refined, Role: q.Role}, attempt+1)
}
