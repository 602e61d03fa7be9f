// Package textutil provides text helpers for article titles and topics.
//
// The primary use cases are:
//   - Turning article titles into safe download filenames
//   - Comparing topics so a new run can warn about near-duplicate articles
//
// Topic fingerprints are term-frequency vectors over lowercased letter/digit
// runs, so Hangul and other scripts tokenize the same way Latin text does.
package textutil
