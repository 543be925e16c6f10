package domain

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ByteSet is a set of byte values.
//
// The zero value is the empty set. ByteSet is a value type; the mutating
// methods return a new set.
type ByteSet [4]uint64

// NewByteSet builds a set from the given bytes.
func NewByteSet(values ...byte) ByteSet {
	var s ByteSet
	for _, v := range values {
		s = s.With(v)
	}
	return s
}

// ByteSetOf builds a set from every byte of text.
func ByteSetOf(text string) ByteSet {
	return NewByteSet([]byte(text)...)
}

// With returns s plus b.
func (s ByteSet) With(b byte) ByteSet {
	s[b>>6] |= 1 << (b & 63)
	return s
}

// Has reports whether b is in the set.
func (s ByteSet) Has(b byte) bool {
	return s[b>>6]&(1<<(b&63)) != 0
}

// Contains reports whether v is a byte value in the set. Values outside
// [0, 255], such as the unknown sentinel, are never contained.
func (s ByteSet) Contains(v int16) bool {
	if v < 0 || v > 0xff {
		return false
	}
	return s.Has(byte(v))
}

// Union returns the union of both sets.
func (s ByteSet) Union(other ByteSet) ByteSet {
	for i := range s {
		s[i] |= other[i]
	}
	return s
}

// Len returns the number of members.
func (s ByteSet) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s ByteSet) IsEmpty() bool {
	return s == ByteSet{}
}

// Members returns the members in ascending order.
func (s ByteSet) Members() []byte {
	out := make([]byte, 0, s.Len())
	for i, w := range s {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, byte(i*64+bit))
			w &^= 1 << bit
		}
	}
	return out
}

// First returns the smallest member.
func (s ByteSet) First() (byte, bool) {
	for i, w := range s {
		if w != 0 {
			return byte(i*64 + bits.TrailingZeros64(w)), true
		}
	}
	return 0, false
}

// String lists the members, collapsing runs of three or more into ranges.
func (s ByteSet) String() string {
	members := s.Members()
	var b strings.Builder
	for i := 0; i < len(members); {
		j := i
		for j+1 < len(members) && members[j+1] == members[j]+1 {
			j++
		}
		if j-i >= 2 {
			fmt.Fprintf(&b, "%s-%s", quoteByte(members[i]), quoteByte(members[j]))
		} else {
			for k := i; k <= j; k++ {
				b.WriteString(quoteByte(members[k]))
			}
		}
		i = j + 1
	}
	return b.String()
}

func quoteByte(c byte) string {
	if c == '-' || c == '\\' {
		return `\` + string(c)
	}
	if c >= 0x20 && c < 0x7f {
		return string(c)
	}
	return fmt.Sprintf(`\x%02x`, c)
}

// DefaultAllowed returns the default allowed plaintext set: ASCII letters,
// digits, space, comma and period.
func DefaultAllowed() ByteSet {
	var s ByteSet
	for c := byte('a'); c <= 'z'; c++ {
		s = s.With(c).With(c - 'a' + 'A')
	}
	for c := byte('0'); c <= '9'; c++ {
		s = s.With(c)
	}
	return s.With(' ').With(',').With('.')
}

// ParseByteSet parses a character class such as "a-zA-Z0-9 ,.".
//
// A '-' between two characters denotes an inclusive range. "\-" and "\\"
// escape a literal dash or backslash, and "\xHH" denotes a raw byte.
func ParseByteSet(class string) (ByteSet, error) {
	var s ByteSet
	chars, err := unescapeClass(class)
	if err != nil {
		return s, err
	}

	for i := 0; i < len(chars); i++ {
		c := chars[i]
		if i+2 < len(chars) && chars[i+1].rangeDash {
			lo, hi := c.b, chars[i+2].b
			if lo > hi {
				return s, ErrInvalidConfig.WithDetails(fmt.Sprintf("reversed range %q-%q", lo, hi))
			}
			for v := int(lo); v <= int(hi); v++ {
				s = s.With(byte(v))
			}
			i += 2
			continue
		}
		s = s.With(c.b)
	}
	return s, nil
}

type classChar struct {
	b         byte
	rangeDash bool
}

func unescapeClass(class string) ([]classChar, error) {
	out := make([]classChar, 0, len(class))
	for i := 0; i < len(class); i++ {
		c := class[i]
		switch {
		case c == '\\' && i+1 < len(class) && class[i+1] == 'x':
			if i+3 >= len(class) {
				return nil, ErrInvalidConfig.WithDetails("truncated \\x escape")
			}
			v, err := strconv.ParseUint(class[i+2:i+4], 16, 8)
			if err != nil {
				return nil, ErrInvalidConfig.WithDetails("bad \\x escape").WithCause(err)
			}
			out = append(out, classChar{b: byte(v)})
			i += 3
		case c == '\\' && i+1 < len(class):
			out = append(out, classChar{b: class[i+1]})
			i++
		case c == '-' && len(out) > 0 && i+1 < len(class):
			out = append(out, classChar{b: c, rangeDash: true})
		default:
			out = append(out, classChar{b: c})
		}
	}
	return out, nil
}
