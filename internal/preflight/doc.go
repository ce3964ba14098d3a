// Package preflight provides the readiness checks behind `modbase doctor`:
// external programs, state and log directory access, and store
// reachability.
package preflight
