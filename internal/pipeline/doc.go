// Package pipeline wires the modbase building blocks into the runs exposed by
// the CLI: parse, extract, check, and download.
//
// Parse and extract hold an exclusive run lock for their duration so two
// invocations never write the same state concurrently. Parse, extract, and
// download runs are recorded in the history ledger when one is attached.
package pipeline
