// Package logging wires log/slog for reelforge with console and JSON
// handlers, shared field-name constants, and helpers that derive structured
// attributes (job, stage, run id) from a context. All components receive a
// *slog.Logger built here so log output stays uniform between the CLI and
// the pipeline internals.
package logging
