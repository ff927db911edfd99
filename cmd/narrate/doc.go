// Narrate is a local-first CLI and MCP server that turns version-control
// changes into structured commit context for AI assistants.
//
// It reads staged, unstaged, or revision-range diffs, segments them into
// hunks, packs hunks into token-bounded pages, scans added lines for
// potential secrets (always redacted), and classifies each hunk against a
// stated goal. Deterministic exit codes make it suitable for CI gating and
// git pre-commit hooks.
//
// Usage:
//
//	narrate context staged --goal "fix login timeout"  # build commit context
//	narrate context range origin/main..HEAD            # context for a range
//	narrate scan staged                                # secret scan only
//	narrate serve                                      # MCP server on stdio
//	narrate hook install                               # pre-commit secret gate
//
// See https://github.com/narrate-dev/narrate for full documentation.
package main
