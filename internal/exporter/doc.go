// Package exporter renders an aggregation result into downloadable
// artifacts: CSV, Markdown, and XLSX. All renderers are deterministic
// functions of the result and its filter bounds and perform no I/O beyond
// the writer they are given.
package exporter
