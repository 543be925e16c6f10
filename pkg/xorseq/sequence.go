// Package xorseq provides the byte-sequence algebra used for many-time pad
// analysis.
package xorseq

import (
	"strings"
	"unicode/utf8"
)

// Unknown marks a byte whose value has not been recovered.
const Unknown int16 = -1

// DefaultPlaceholder is emitted by Xor wherever an operand is Unknown.
const DefaultPlaceholder byte = '_'

const hexDigits = "0123456789abcdef"

// Sequence is an ordered run of byte values, each either 0-255 or Unknown.
//
// The length is fixed at construction; Set and SetByte mutate in place
// but never change the length.
type Sequence []int16

// FromBytes creates a fully-known sequence from raw bytes.
func FromBytes(b []byte) Sequence {
	s := make(Sequence, len(b))
	for i, v := range b {
		s[i] = int16(v)
	}
	return s
}

// FromString creates a fully-known sequence from the bytes of text.
func FromString(text string) Sequence {
	return FromBytes([]byte(text))
}

// Unknowns creates a sequence of n Unknown values.
func Unknowns(n int) Sequence {
	if n < 0 {
		n = 0
	}
	s := make(Sequence, n)
	for i := range s {
		s[i] = Unknown
	}
	return s
}

// Len returns the number of values in the sequence.
func (s Sequence) Len() int {
	return len(s)
}

// At returns the value at index i (a byte value or Unknown).
func (s Sequence) At(i int) int16 {
	return s[i]
}

// Known reports whether the value at index i has been recovered.
func (s Sequence) Known(i int) bool {
	return s[i] != Unknown
}

// Set writes v at index i. Values outside [-1, 255] are stored as Unknown.
func (s Sequence) Set(i int, v int16) {
	if v < Unknown || v > 0xff {
		v = Unknown
	}
	s[i] = v
}

// SetByte writes a known byte at index i.
func (s Sequence) SetByte(i int, b byte) {
	s[i] = int16(b)
}

// Slice returns a copy of the values from index from to the end.
// Out-of-range starts yield an empty sequence.
func (s Sequence) Slice(from int) Sequence {
	if from < 0 {
		from = 0
	}
	if from >= len(s) {
		return Sequence{}
	}
	return s[from:].Clone()
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Combine XORs s with other over the first min(len(s), len(other)) values.
// Where either operand is Unknown the result holds placeholder instead.
func (s Sequence) Combine(other Sequence, placeholder byte) Sequence {
	n := min(len(s), len(other))
	out := make(Sequence, n)
	for i := 0; i < n; i++ {
		a, b := s[i], other[i]
		if a == Unknown || b == Unknown {
			out[i] = int16(placeholder)
			continue
		}
		out[i] = a ^ b
	}
	return out
}

// Xor is Combine with DefaultPlaceholder.
func (s Sequence) Xor(other Sequence) Sequence {
	return s.Combine(other, DefaultPlaceholder)
}

// Bytes converts the sequence to raw bytes. The boolean is false when any
// value is Unknown; those positions are zero in the returned slice.
func (s Sequence) Bytes() ([]byte, bool) {
	out := make([]byte, len(s))
	complete := true
	for i, v := range s {
		if v == Unknown {
			complete = false
			continue
		}
		out[i] = byte(v)
	}
	return out, complete
}

// KnownCount returns the number of recovered values.
func (s Sequence) KnownCount() int {
	n := 0
	for _, v := range s {
		if v != Unknown {
			n++
		}
	}
	return n
}

// Render maps every byte to the character with the same code point, raw
// control and high bytes included. Unknown renders as DefaultPlaceholder.
func (s Sequence) Render() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, v := range s {
		if v == Unknown {
			b.WriteByte(DefaultPlaceholder)
			continue
		}
		if v < utf8.RuneSelf {
			b.WriteByte(byte(v))
			continue
		}
		b.WriteRune(rune(v))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (s Sequence) String() string {
	return s.Render()
}

// Hex returns "0x" followed by two lowercase hex digits per byte.
// Unknown values are written as "??".
func (s Sequence) Hex() string {
	buf := make([]byte, 2, 2+2*len(s))
	buf[0], buf[1] = '0', 'x'
	for _, v := range s {
		if v == Unknown {
			buf = append(buf, '?', '?')
			continue
		}
		buf = append(buf, hexDigits[v>>4], hexDigits[v&0x0f])
	}
	return string(buf)
}
