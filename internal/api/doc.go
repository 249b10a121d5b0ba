// Package api exposes the operations the CLI (and any future transport) calls
// to work with training packs.
//
// # Decoding
//
// DecodeService turns Base64 metadata into a trainingpack.Pack. Lookups go
// through a small in-process LRU, then the persistent packcache, and only
// then the bitstream decoder. Successful decodes are written back to both
// layers; failures never are. Each call carries a correlation ID in its
// context so every log line for one request can be grouped.
//
// # Uploads
//
// ValidateUpload checks a plugin upload body (pack details plus per-shot
// recordings) and cross-checks the declared shots against the decoded
// metadata. Every violation is collected into a single ValidationError so a
// client can fix all of them in one round trip.
//
// # Cache maintenance
//
// OpenPackCache, RemoveCacheEntryByNumber and PruneCache wrap packcache with
// config-driven defaults and the numbering used by `packhub cache list`.
package api
