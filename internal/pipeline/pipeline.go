// Package pipeline turns a version-control diff into a bounded,
// safety-checked CommitContext: retrieval, segmentation, token-aware
// pagination, secret scanning, and goal alignment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/narrate-dev/narrate/internal/align"
	"github.com/narrate-dev/narrate/internal/config"
	"github.com/narrate-dev/narrate/internal/gitdiff"
	"github.com/narrate-dev/narrate/internal/hunk"
	"github.com/narrate-dev/narrate/internal/paginate"
	"github.com/narrate-dev/narrate/internal/secrets"
)

// ErrInconsistent indicates an internal invariant violation during
// assembly: a stage referenced a hunk absent from the segmented set.
// This is a pipeline bug, not bad input.
var ErrInconsistent = errors.New("assembly inconsistency")

// StageError wraps a failure with the stage and scope where it occurred,
// enough to diagnose without including any raw secret text.
type StageError struct {
	Stage string
	Scope gitdiff.Scope
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage (%s scope): %v", e.Stage, e.Scope, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Options are the per-request inputs.
type Options struct {
	Scope   gitdiff.Scope
	Goal    string
	Budget  int      // 0 uses the configured default
	Markers []string // extra suppression markers for this request
}

// Build runs the full pipeline for the scope: collect, segment, then
// paginate, scan, and align concurrently, converging at assembly.
// Cancellation is checked between stages; per-hunk work is bounded and
// fast, so no mid-stage cancellation exists. No retries anywhere: every
// failure stems from deterministic input shape.
func Build(ctx context.Context, opts Options, cfg config.Config) (*CommitContext, error) {
	diff, err := gitdiff.Collect(ctx, opts.Scope)
	if err != nil {
		return nil, &StageError{Stage: "collect", Scope: opts.Scope, Err: err}
	}
	return BuildFromDiff(ctx, diff, opts, cfg)
}

// BuildFromDiff runs every stage after retrieval on an already-collected
// diff. Split out so the pipeline core stays testable without a repo.
func BuildFromDiff(ctx context.Context, diff string, opts Options, cfg config.Config) (*CommitContext, error) {
	budget := opts.Budget
	if budget <= 0 {
		budget = cfg.TokenBudget
	}

	est, err := paginate.ForName(cfg.Estimator)
	if err != nil {
		return nil, &StageError{Stage: "paginate", Scope: opts.Scope, Err: err}
	}

	hunks, err := hunk.Segment(diff)
	if err != nil {
		return nil, &StageError{Stage: "segment", Scope: opts.Scope, Err: err}
	}
	if len(hunks) == 0 {
		return nil, &StageError{Stage: "segment", Scope: opts.Scope, Err: gitdiff.ErrNoChanges}
	}

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: "segment", Scope: opts.Scope, Err: err}
	}

	scanCfg := cfg.ScannerConfig()
	scanCfg.Markers = append(scanCfg.Markers, opts.Markers...)

	// Pagination, scanning, and alignment are independent reads of the
	// same immutable hunk set; they only converge at assembly.
	var (
		wg        sync.WaitGroup
		pages     []paginate.Page
		pageErr   error
		findings  []secrets.Finding
		alignment map[string]align.Alignment
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		pages, pageErr = paginate.Paginate(hunks, budget, est)
	}()
	go func() {
		defer wg.Done()
		findings = secrets.New(scanCfg).Scan(hunks)
	}()
	go func() {
		defer wg.Done()
		alignment = align.Classify(opts.Goal, hunks)
	}()
	wg.Wait()

	if pageErr != nil {
		return nil, &StageError{Stage: "paginate", Scope: opts.Scope, Err: pageErr}
	}
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: "assemble", Scope: opts.Scope, Err: err}
	}

	cc, err := assemble(opts.Scope, opts.Goal, budget, hunks, pages, findings, alignment)
	if err != nil {
		return nil, &StageError{Stage: "assemble", Scope: opts.Scope, Err: err}
	}
	return cc, nil
}

// IsUserError reports whether the error is a user-recoverable input
// condition rather than an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, gitdiff.ErrNoChanges) ||
		errors.Is(err, gitdiff.ErrSourceUnavailable) ||
		errors.Is(err, hunk.ErrMalformedDiff)
}
