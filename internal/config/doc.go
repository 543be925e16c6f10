// Package config defines the padbreak configuration structure.
//
// Values are loaded by internal/infra/confloader with the precedence
// flags > environment (PADBREAK_*) > file > Default().
package config
