// Package output renders padbreak results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned text tables
//   - json.go, yaml.go: machine-readable output
//   - report.go: the recovery report document
//   - progress.go: throttled crib progress bar
package output
