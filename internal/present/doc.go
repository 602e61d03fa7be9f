// Package present exposes the actions available once a run produced an
// artifact: copy to clipboard, download to a file, and publish hand-off.
//
// Every action answers with a Feedback value so the terminal UI and the CLI
// can show an explicit message. Publishing itself belongs to an external
// site collaborator; this package either writes a WordPress-shaped post
// request into the configured outbox directory or reports that no site is
// configured.
package present
