// Package main provides the entry point for padbreak.
//
// Commands:
//
//   - recover: process a batch file or a directory of batches once
//   - watch: process a directory and every batch file dropped into it
//   - generate: build a synthetic corpus from plaintext lines
//   - history: list, report, export and import a persisted history
//   - config: show or validate the effective configuration
//
// Usage:
//
//	padbreak recover --cribs words.txt ./batches
//	padbreak -o json recover --state-dir ./state --resume ./batches
//	padbreak watch --state-dir ./state --metrics-addr :9464 ./inbox
//	padbreak generate --seed secret --out ./corpus plaintext.txt
package main
