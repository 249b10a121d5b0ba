// Package packcache persists decoded training packs in a SQLite database so
// repeat lookups of the same pack skip the bitstream decoder.
//
// Entries are keyed by pack identity: an explicit pack ID when the caller has
// one, otherwise a SipHash-128 fingerprint of the raw metadata bytes. Decoded
// packs are stored as zstd-compressed JSON next to a handful of summary
// columns so listings never need to decompress. Maintenance operations that
// rewrite many rows (Clear, Prune) take an exclusive file lock beside the
// database so concurrent CLI invocations do not interleave.
//
// A Cache opened with an empty path is disabled and every operation is a
// no-op.
package packcache
