// Package catalog reads the back-office product catalog. It supplies the
// count session's expectation list and resolves scanned identifiers to
// product details, scoped to a single store.
package catalog
