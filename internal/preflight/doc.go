// Package preflight provides readiness checks for the filesystem paths and
// storage packhub depends on.
//
// `packhub doctor` runs RunAll and prints one line per Result. Checks for
// disabled features are skipped rather than reported as failures.
package preflight
