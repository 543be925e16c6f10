// Package metric provides Prometheus metrics for padbreak.
//
// Metrics cover the crib search (pairs compared, alignments tested,
// pruned and disproved), batch processing (duration, resolved, conflicting
// and revoked positions) and convergence of the final key.
//
// They are exposed over HTTP at /metrics in watch mode, or written to a
// node_exporter textfile at the end of a recover run.
package metric
