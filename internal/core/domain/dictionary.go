package domain

import (
	"bufio"
	"io"
	"strings"

	"github.com/yndnr/padbreak/pkg/xorseq"
)

// defaultCribs are common English words of two and three letters.
var defaultCribs = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "day", "get", "has", "him",
	"his", "how", "man", "new", "now", "old", "see", "two", "way", "who",
	"did", "its", "let", "put", "say", "she", "too", "use", "The", "And",
	"of", "to", "in", "it", "is", "be", "as", "at", "so", "we",
	"he", "by", "or", "on", "do", "if", "me", "my", "up", "an",
	"go", "no", "us", "am",
}

// Dictionary is an ordered list of crib words.
type Dictionary struct {
	cribs []xorseq.Sequence
}

// NewDictionary builds a dictionary from text cribs. Empty entries and
// duplicates are dropped; the first occurrence keeps its place.
func NewDictionary(words ...string) Dictionary {
	seen := make(map[string]struct{}, len(words))
	d := Dictionary{cribs: make([]xorseq.Sequence, 0, len(words))}
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		d.cribs = append(d.cribs, xorseq.FromString(w))
	}
	return d
}

// DefaultDictionary returns the built-in crib dictionary.
func DefaultDictionary() Dictionary {
	return NewDictionary(defaultCribs...)
}

// ParseDictionary reads one crib per line. The line terminator is
// stripped; leading and trailing spaces are part of the crib.
func ParseDictionary(r io.Reader) (Dictionary, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		words = append(words, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return Dictionary{}, err
	}
	return NewDictionary(words...), nil
}

// Len returns the number of cribs.
func (d Dictionary) Len() int {
	return len(d.cribs)
}

// At returns crib i.
func (d Dictionary) At(i int) xorseq.Sequence {
	return d.cribs[i]
}

// Cribs returns a copy of the crib list.
func (d Dictionary) Cribs() []xorseq.Sequence {
	out := make([]xorseq.Sequence, len(d.cribs))
	copy(out, d.cribs)
	return out
}

// MinLen returns the length of the shortest crib, or 0 when empty.
func (d Dictionary) MinLen() int {
	shortest := 0
	for i, c := range d.cribs {
		if i == 0 || c.Len() < shortest {
			shortest = c.Len()
		}
	}
	return shortest
}

// Words renders every crib as text.
func (d Dictionary) Words() []string {
	out := make([]string, len(d.cribs))
	for i, c := range d.cribs {
		out[i] = c.Render()
	}
	return out
}
