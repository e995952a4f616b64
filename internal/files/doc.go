// Package files locates retrospective CSV exports on disk and loads them
// into memory for aggregation. Discovery is name-sorted so repeated runs
// over the same directory process files in a stable order.
package files
