package count

import (
	"errors"
	"fmt"
	"strings"

	"cycle-count/feature/count/models"
)

// Validation errors. The operation has no effect; the caller re-prompts.
var (
	// ErrEmptyIdentifier rejects a scan event with no identifier.
	ErrEmptyIdentifier = errors.New("identifier must not be empty")
	// ErrNegativeQuantity rejects a negative manual count.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrUnknownSKU rejects a quantity entry for a SKU with no
	// aggregate-quantity items in the expectation list.
	ErrUnknownSKU = errors.New("sku has no aggregate-quantity items in this session")
	// ErrInvalidReason rejects a reason outside the closed enumeration.
	ErrInvalidReason = errors.New("reason is not a valid classification")
	// ErrUnknownDiscrepancy rejects a classification for an identifier with
	// no discrepancy line.
	ErrUnknownDiscrepancy = errors.New("no discrepancy recorded for identifier")
)

// StateError reports an operation attempted in a session status that does
// not permit it.
type StateError struct {
	Op     string
	Status models.Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("operation %q not allowed while session is %s", e.Op, e.Status)
}

// TransitionError reports a refused lifecycle transition. Blocking lists the
// discrepancy identifiers preventing it, so the caller can focus operator
// attention.
type TransitionError struct {
	From     models.Status
	To       models.Status
	Blocking []string
}

func (e *TransitionError) Error() string {
	if len(e.Blocking) == 0 {
		return fmt.Sprintf("transition %s -> %s not allowed", e.From, e.To)
	}
	return fmt.Sprintf("transition %s -> %s blocked by unresolved discrepancies: %s",
		e.From, e.To, strings.Join(e.Blocking, ", "))
}
