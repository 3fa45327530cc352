// Package report exports a completed count session's discrepancy table to
// object storage as a dated CSV, one row per discrepancy.
package report
