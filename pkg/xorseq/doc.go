// Package xorseq provides the byte-sequence algebra used for many-time pad
// analysis.
//
// A Sequence holds byte values in the range [0, 255] plus the Unknown
// sentinel (-1), which only appears in keystream estimates where a byte has
// not been recovered yet. Sequences are combined with XOR; wherever either
// operand is Unknown the result carries a caller-chosen placeholder byte.
//
// Usage:
//
//	c1 := xorseq.FromBytes(ciphertext1)
//	c2 := xorseq.FromBytes(ciphertext2)
//	p1p2 := c1.Xor(c2) // key cancels: plaintext1 XOR plaintext2
//	guess := p1p2.Slice(7).Xor(xorseq.FromString("the"))
//
// Combine never aliases its operands: every call returns a fresh Sequence.
package xorseq
