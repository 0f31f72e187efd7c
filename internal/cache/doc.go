// Package cache implements the file-backed key-value store. Every key maps to
// one file <dir>/<md5(key)>.tmp holding a fixed 17-byte little-endian header
// (format version, TTL seconds, creation unix seconds) followed by the raw
// payload. Validity is recomputed from the header on every read; the
// directory is the only source of truth and no in-memory index is kept.
// Expired or unparsable files are removed lazily by Get/Lookup, by Remove
// with force=false, or in bulk by Clear.
//
// Concurrent writers against the same directory are not coordinated: the
// last Set wins, and Clear may race with Set on a key whose previous record
// had already expired.
package cache
