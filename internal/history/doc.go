// Package history keeps a local SQLite ledger of modbase runs.
//
// Each parse, extract, or download invocation records a row when it starts
// and updates it when it finishes. The ledger is informational: callers treat
// write failures as warnings and never abort a run because of them.
package history
