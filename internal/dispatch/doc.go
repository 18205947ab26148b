// Package dispatch orchestrates the report pipeline: it loads grouped
// audit results, resolves the change reference, and archives raw reports
// concurrently, then fans the formatted summary out to the enabled
// notification channels.
package dispatch
