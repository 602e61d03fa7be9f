// Package generation issues article generation requests and applies the
// per-flow failure policy.
//
// Client talks to the backend: it attaches the bearer token and a request id,
// retries transient failures with exponential backoff, and decodes either a
// bare artifact or the server's success envelope. Invoker sits on top and
// enforces the run rules: a blank topic is rejected locally, only one run may
// be in flight, the multi-step flow surfaces failures, and the legacy flow
// substitutes a deterministic placeholder artifact.
package generation
