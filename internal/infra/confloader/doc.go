// Package confloader loads configuration with koanf.
//
// Sources are applied in order file (YAML), environment (PADBREAK_*) and
// overrides, each overriding the previous one. Values already present in
// the target struct serve as defaults.
package confloader
