// Package tui renders a wizard.Controller as a Bubble Tea program.
//
// The model never owns form state. Keystrokes are forwarded to the
// controller, and every frame is drawn from the latest snapshot the
// controller published. Recent log lines from a logging.StreamHub are shown
// in a panel under the form.
package tui
