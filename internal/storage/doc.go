// Package storage persists the batch key history.
//
//   - kv.go: KVEngine interface and configuration
//   - badger.go: Badger v3 implementation, on disk or in memory
//   - history.go: HistoryStore, JSON batch records keyed by batch ID
//
// A recover run with a state directory commits every processed batch, so
// an interrupted run can resume from the last committed batch. Revocations
// of an earlier record are written in the same transaction as the batch
// that caused them.
package storage
