// Package logging assembles structured slog loggers and formatting helpers used
// across autoposter components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so wizard code can automatically
// tag log lines with run IDs, flows, and correlation IDs. Console output is
// colourized only when the destination is a terminal. A StreamHub can be
// attached to mirror recent events into the interactive wizard's log panel.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the tool.
package logging
