// Package form holds the in-memory state of a single form session.
//
// A State is created when a wizard opens, mutated by step actions and
// discarded on cancel or successful submission. It never persists anything.
package form
