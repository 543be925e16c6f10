package domain

import "github.com/yndnr/padbreak/pkg/xorseq"

// Options is the immutable configuration shared by the matcher and the
// engine. It is passed by value; there is no package-level mutable default.
type Options struct {
	// Allowed is the set of plausible plaintext bytes.
	Allowed ByteSet

	// Placeholder is emitted wherever a combine cannot produce a byte.
	Placeholder byte
}

// DefaultOptions returns the default allowed set and placeholder.
func DefaultOptions() Options {
	return Options{
		Allowed:     DefaultAllowed(),
		Placeholder: xorseq.DefaultPlaceholder,
	}
}

// Validate returns the configuration conflicts that make recovery
// impossible. They are warnings: the engine still runs.
func (o Options) Validate() []error {
	var warnings []error
	if o.Allowed.IsEmpty() {
		warnings = append(warnings, ErrEmptyAllowedSet)
	}
	return warnings
}
