// Package main hosts the autoposter CLI entrypoint and command graph.
//
// The Cobra command tree drives the content-generation wizard either headlessly
// (generate, checklist) or through the interactive terminal UI (wizard), and
// exposes run history, form presets, backend status, and configuration
// scaffolding. It centralizes configuration resolution and collaborator wiring
// in commandContext so subcommands only deal with flags and output.
//
// Keep this package lean: new behavior belongs in the internal packages first
// and is surfaced here through dedicated commands or flags.
package main
