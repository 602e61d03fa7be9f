// Package auth supplies the bearer credential attached to generation and
// health requests.
//
// Token acquisition and refresh belong to the backend; this package only
// resolves the current token from configuration, the environment, or a JSON
// token file written by another tool.
package auth
