// Package aggregate accumulates per-variant experiment metrics.
//
// Counters are updated on the request path by many goroutines at once, so
// every field is an independent lock-free cell: integer counts use striped
// xsync counters and float sums use compare-and-swap adders. A Snapshot reads
// each cell once; it is read-committed across fields, not a consistent cut.
package aggregate
