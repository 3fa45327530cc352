package count

import (
	"time"

	"cycle-count/feature/count/models"
)

// unknownItemName labels observed identifiers with no catalog match.
const unknownItemName = "Unknown item"

// Outcome is the side-effect record of an applied command.
type Outcome struct {
	// Duplicate is set when a scan hit an already-observed identifier. The
	// membership did not change but the event was not dropped; the caller
	// warns the operator.
	Duplicate bool `json:"duplicate,omitempty"`
	// NeedsConfirmation is set when a quantity-to-zero entry arrived without
	// the explicit confirmation flag. The session is unchanged; the caller
	// must re-submit with confirmation.
	NeedsConfirmation bool `json:"needs_confirmation,omitempty"`
	// ItemName names the touched item, or "Unknown item".
	ItemName string `json:"item_name,omitempty"`
	// Identifier is the membership key the command touched.
	Identifier string `json:"identifier,omitempty"`
	// At is the event timestamp.
	At time.Time `json:"at"`
}

// Command is a single ledger mutation applied to the session aggregate.
type Command interface {
	// allowedIn reports whether the session status permits this command.
	allowedIn(status models.Status) bool
	// name identifies the command in state errors.
	name() string
	// apply mutates the session and returns the side-effect record.
	// When the returned outcome has NeedsConfirmation set, the session is
	// guaranteed unchanged.
	apply(s *models.Session, now time.Time) (Outcome, error)
}

// ScanCommand marks an identifier as observed.
type ScanCommand struct {
	Identifier string
}

func (ScanCommand) name() string { return "scan" }

func (ScanCommand) allowedIn(status models.Status) bool {
	return status == models.StatusInProgress
}

func (c ScanCommand) apply(s *models.Session, now time.Time) (Outcome, error) {
	if c.Identifier == "" {
		return Outcome{}, ErrEmptyIdentifier
	}

	itemName := unknownItemName
	if item := s.ItemByIdentifier(c.Identifier); item != nil {
		itemName = item.Name
	}

	added := s.Observed.Add(c.Identifier)
	s.LastAction = &models.LastAction{
		ItemName:   itemName,
		Identifier: c.Identifier,
		At:         now,
	}

	return Outcome{
		Duplicate:  !added,
		ItemName:   itemName,
		Identifier: c.Identifier,
		At:         now,
	}, nil
}

// SetQuantityCommand sets the manual count for an aggregate-quantity SKU.
// The SKU's representative identifier (its first expectation entry) is the
// membership key: a positive count observes it, zero removes it.
type SetQuantityCommand struct {
	SKU   string
	Count int
	// ConfirmZero acknowledges that a zero count moves the SKU back to the
	// unscanned bucket. Without it a zero entry has no effect and the
	// outcome asks for confirmation.
	ConfirmZero bool
}

func (SetQuantityCommand) name() string { return "set-quantity" }

func (SetQuantityCommand) allowedIn(status models.Status) bool {
	return status == models.StatusInProgress
}

func (c SetQuantityCommand) apply(s *models.Session, now time.Time) (Outcome, error) {
	if c.Count < 0 {
		return Outcome{}, ErrNegativeQuantity
	}

	var members []*models.Item
	for i := range s.Items {
		if s.Items[i].SKU == c.SKU && s.Items[i].Mode == models.ModeAggregateQuantity {
			members = append(members, &s.Items[i])
		}
	}
	if len(members) == 0 {
		return Outcome{}, ErrUnknownSKU
	}
	representative := members[0]

	if c.Count == 0 && !c.ConfirmZero {
		return Outcome{
			NeedsConfirmation: true,
			ItemName:          representative.Name,
			Identifier:        representative.Identifier,
			At:                now,
		}, nil
	}

	for _, item := range members {
		item.ManualCount = c.Count
	}
	if c.Count > 0 {
		s.Observed.Add(representative.Identifier)
	} else {
		s.Observed.Remove(representative.Identifier)
	}
	s.LastAction = &models.LastAction{
		ItemName:   representative.Name,
		Identifier: representative.Identifier,
		At:         now,
	}

	return Outcome{
		ItemName:   representative.Name,
		Identifier: representative.Identifier,
		At:         now,
	}, nil
}

// SetReasonCommand classifies a discrepancy with a cause from the closed
// enumeration. A note is stored alongside; its presence for OTHER is
// enforced at the sign-off transition, not here.
type SetReasonCommand struct {
	Identifier string
	Reason     models.Reason
	Note       string
}

func (SetReasonCommand) name() string { return "set-reason" }

func (SetReasonCommand) allowedIn(status models.Status) bool {
	return status == models.StatusReconciling
}

func (c SetReasonCommand) apply(s *models.Session, now time.Time) (Outcome, error) {
	if !c.Reason.Valid() {
		return Outcome{}, ErrInvalidReason
	}

	d := s.DiscrepancyByIdentifier(c.Identifier)
	if d == nil {
		return Outcome{}, ErrUnknownDiscrepancy
	}

	d.Reason = c.Reason
	d.Note = c.Note

	return Outcome{
		ItemName:   d.Name,
		Identifier: d.Identifier,
		At:         now,
	}, nil
}
