// Package history persists resolved generation runs in SQLite.
//
// Every run the invoker resolves (success, fallback, or surfaced error) is
// stored with its request, outcome, and artifact so the CLI can list past
// runs, show a stored article again, and warn when a new topic closely
// matches one already written.
package history
