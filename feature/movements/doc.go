// Package movements implements the auto-reconciliation oracle over the
// back-office stock-movement log. A shortage whose unit was sold,
// transferred out, or returned to the warehouse is explained by its latest
// recorded movement.
package movements
