// Package services defines shared utilities consumed by the pipeline
// components and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, command names, and product versions
//     for logging.
//   - Structured error markers plus the Wrap helper that let callers decide
//     whether a failure degrades one record or aborts the command.
//
// Integrations with remote services and external binaries live in the
// subpackages (steam, depotdownloader).
package services
