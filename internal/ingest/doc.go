// Package ingest loads ciphertext batches and crib dictionaries from disk.
//
// A batch file holds one ciphertext per line, base64 or hex encoded. Blank
// lines and lines starting with '#' are skipped. A batch directory is read
// in lexical file name order, which becomes the batch processing order.
package ingest
