// Package padgen builds many-time-pad corpora: one deterministic keystream
// reused across many plaintexts, the setting padbreak recovers keys from.
//
// The keystream is ChaCha20 keyed through HKDF-SHA256 from a seed, so a
// corpus and its key can be regenerated from the seed alone.
package padgen
