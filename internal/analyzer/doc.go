// Package analyzer turns a raw competitor URL into a form.CompetitorRef.
//
// Analysis is asynchronous from the wizard's point of view: the controller
// runs Analyze on its own goroutine and applies the result only if the session
// is still open and the list still has room. The derived title comes from the
// URL host; ids are UUIDs so rapid sequential submissions never collide.
package analyzer
