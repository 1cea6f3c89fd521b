// Package upgrade applies versioned schema upgrade steps to a calendar
// server database. It tracks the current schema version in the
// CALENDARSERVER table and walks the chain of upgrade scripts from the
// current version to a requested target, one transaction per step.
package upgrade

// Step is a single schema upgrade from one version to the next.
// Steps are immutable once loaded; the engine never mutates them.
type Step struct {
	From       int
	To         int
	Statements []string
}
