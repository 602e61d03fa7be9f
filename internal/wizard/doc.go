// Package wizard owns an interactive intake session.
//
// A Controller holds the form, the pending input buffers, the current run,
// and the last artifact. One goroutine owns that state; every edit, and
// every result reported by the analyzer, the progress simulator, and the
// generation invoker, is applied as a closure on that goroutine in arrival
// order. Subscribers receive immutable snapshots after each change.
//
// Closing the controller cancels in-flight analyses, the progress ticker,
// and the running request. Results that arrive afterwards are dropped, as
// are results that belong to a superseded run or an earlier form.
package wizard
