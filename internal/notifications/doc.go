// Package notifications delivers run and publish events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. Each
// Event maps to a fixed title, message template, and tag set so callers only
// hand over a Payload. Per-event toggles in the [notifications] section
// suppress whole event families.
package notifications
