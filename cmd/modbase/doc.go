// Package main hosts the modbase CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto internal/pipeline
// runs (check, download, parse, extract), the history ledger, preflight
// checks, and configuration scaffolding. Configuration, logging, and the
// per-invocation run id are resolved lazily in commandContext so commands
// that do not need them (config init) never touch the filesystem.
package main
