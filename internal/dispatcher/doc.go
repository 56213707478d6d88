// Package dispatcher owns the current availability snapshot and the live
// subscription registry. Each refresh cycle's snapshot is diffed per key
// against the previous one; the resulting added/removed events are fanned
// out once per cycle to every subscription whose criteria match.
package dispatcher
