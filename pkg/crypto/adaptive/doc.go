// Package adaptive provides authenticated encryption with automatic
// algorithm selection, and passphrase envelopes built on it.
//
// AES-256-GCM is chosen where the CPU accelerates AES, ChaCha20-Poly1305
// everywhere else. Envelopes record the cipher in their header and derive
// the key from a passphrase with Argon2id. padbreak seals history exports
// with them because the exports contain recovered key material.
package adaptive
