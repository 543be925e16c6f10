// Package command defines the padbreak CLI using urfave/cli/v2.
//
//   - root.go: application, global flags, configuration loading
//   - recover.go: one-shot recovery over a batch file or directory
//   - watch.go: incremental recovery as batch files arrive
//   - generate.go: synthetic many-time-pad corpora
//   - history.go: persisted batch history, export and import
//   - config.go: effective configuration
//   - version.go: build information
//
// Every command loads configuration through loadRuntime, so flags,
// PADBREAK_* variables and the config file combine the same way.
package command
