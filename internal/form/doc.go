// Package form holds the intake state of the content-generation wizard.
//
// State carries the topic, the targeting fields, optional writing options,
// and two bounded ordered collections: secondary keywords (unique by exact
// string) and competitor references (removed by id). Both collections are
// backed by BoundedList, which enforces the five-item capacity and the blank
// and duplicate rules, and only ever hands out copies so mirrored views are
// rebuilt from the canonical list.
//
// State is not safe for concurrent use. The wizard controller owns one State
// and serializes every mutation; other goroutines only see clones.
package form
