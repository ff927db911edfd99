// Package gitdiff retrieves normalized unified diffs from git.
//
// It is the only blocking boundary of the pipeline: a read-only shell-out
// per scope, no retries. Empty and unavailable scopes are terminal,
// user-facing conditions.
package gitdiff

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoChanges indicates the selected scope contains no changes.
// Recoverable by the user: stage or make changes.
var ErrNoChanges = errors.New("no changes found")

// ErrSourceUnavailable indicates git is missing or the working directory
// is not inside a repository.
var ErrSourceUnavailable = errors.New("version control source unavailable")

// Scope selects which diff to retrieve.
type Scope struct {
	Mode  string `json:"mode"`            // staged | unstaged | range
	Range string `json:"range,omitempty"` // rev range, e.g. origin/main..HEAD
}

const (
	ModeStaged   = "staged"
	ModeUnstaged = "unstaged"
	ModeRange    = "range"
)

// ParseScope validates a mode/range pair into a Scope.
func ParseScope(mode, revRange string) (Scope, error) {
	switch mode {
	case ModeStaged, ModeUnstaged:
		return Scope{Mode: mode}, nil
	case ModeRange:
		if strings.TrimSpace(revRange) == "" {
			return Scope{}, fmt.Errorf("range scope requires a revision range")
		}
		return Scope{Mode: ModeRange, Range: revRange}, nil
	default:
		return Scope{}, fmt.Errorf("unknown scope %q (want staged, unstaged, or range)", mode)
	}
}

func (s Scope) String() string {
	if s.Mode == ModeRange {
		return s.Mode + " " + s.Range
	}
	return s.Mode
}

// Collect returns the normalized diff for the scope.
func Collect(ctx context.Context, scope Scope) (string, error) {
	switch scope.Mode {
	case ModeStaged:
		return Staged(ctx)
	case ModeUnstaged:
		return Unstaged(ctx)
	case ModeRange:
		return Range(ctx, scope.Range)
	default:
		return "", fmt.Errorf("unknown scope %q", scope.Mode)
	}
}

// Staged returns the diff of index vs HEAD.
func Staged(ctx context.Context) (string, error) {
	return diffOutput(ctx, "diff", "--cached")
}

// Unstaged returns the diff of working tree vs index.
func Unstaged(ctx context.Context) (string, error) {
	return diffOutput(ctx, "diff")
}

// Range returns the combined diff for a revision range.
func Range(ctx context.Context, revRange string) (string, error) {
	return diffOutput(ctx, "diff", revRange)
}

func diffOutput(ctx context.Context, args ...string) (string, error) {
	out, err := gitOutput(ctx, args...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoChanges
	}
	return out, nil
}

func gitOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: git %s: %s",
				ErrSourceUnavailable, strings.Join(args, " "),
				strings.TrimSpace(string(exitErr.Stderr)))
		}
		// git binary missing entirely
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return string(out), nil
}
