// Package dirwatch reports new batch files dropped into a directory.
//
// Files are reported once, after they have stopped changing for a settle
// period, so a batch copied in several writes is read whole.
package dirwatch
