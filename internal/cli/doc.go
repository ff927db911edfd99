// Package cli wires together the Cobra command tree for the narrate binary.
//
// It defines the root command and all subcommands (context, scan, serve,
// config, hook, version), binds flags, reads configuration, runs the
// commit-context pipeline, and returns deterministic exit codes for git
// hooks and CI gating.
package cli
