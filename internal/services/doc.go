// Package services defines shared utilities consumed by the wizard, the
// generation client, and the presenter actions.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, component names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the categories the wizard reacts to (validation, transport, HTTP).
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability, retries) stays uniform across the tool.
package services
