// Package domain defines the core domain models for padbreak.
//
// Domain models are pure values without IO dependencies. This package
// contains:
//
//   - ByteSet: 256-bit byte set (allowed plaintext characters, candidate bytes)
//   - Options: immutable engine configuration (allowed set, placeholder)
//   - Dictionary: ordered crib words
//   - Position: per key-stream position resolution state
//   - KeyMap: resolved sparse key map for one batch
//   - Batch / BatchRecord: ciphertext batches and their history entries
//   - Errors: domain-specific error definitions
package domain
