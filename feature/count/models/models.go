package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CountingMode selects how an item is counted.
type CountingMode string

const (
	// ModeIdentifierScan counts each unit by scanning its unique identifier.
	ModeIdentifierScan CountingMode = "IDENTIFIER_SCAN"
	// ModeAggregateQuantity counts a SKU as one manual quantity entry.
	ModeAggregateQuantity CountingMode = "AGGREGATE_QUANTITY"
)

// Status is the lifecycle state of a count session.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusReconciling       Status = "RECONCILING"
	StatusAwaitingSignature Status = "AWAITING_SIGNATURE"
	StatusCompleted         Status = "COMPLETED"
)

// DiscrepancyType classifies a discrepancy line.
type DiscrepancyType string

const (
	// TypeShortage marks an expected item that was never observed.
	TypeShortage DiscrepancyType = "SHORTAGE"
	// TypeOverage marks an observed identifier absent from the expectation list.
	TypeOverage DiscrepancyType = "OVERAGE"
)

// Reason is a cause from the closed classification enumeration.
type Reason string

const (
	ReasonSold            Reason = "SOLD"
	ReasonTransferredOut  Reason = "TRANSFERRED_OUT"
	ReasonWarehouseReturn Reason = "RETURNED_TO_WAREHOUSE"
	ReasonOther           Reason = "OTHER"
)

// Valid reports whether r is a member of the closed enumeration.
func (r Reason) Valid() bool {
	switch r {
	case ReasonSold, ReasonTransferredOut, ReasonWarehouseReturn, ReasonOther:
		return true
	default:
		return false
	}
}

// Item is an expected catalog entry within a session.
// Immutable once the session starts, except ManualCount.
type Item struct {
	// Identifier is the unique unit identifier (serial/IMEI-equivalent).
	Identifier string `json:"identifier"`
	// SKU groups identifiers of the same product.
	SKU string `json:"sku"`
	// Name is the display name.
	Name string `json:"name"`
	// Price is the unit price.
	Price float64 `json:"price"`
	// Mode selects the counting mode for this item.
	Mode CountingMode `json:"mode"`
	// ManualCount is the entered quantity; only meaningful under
	// AGGREGATE_QUANTITY.
	ManualCount int `json:"manual_count,omitempty"`
	// ImageURL is an optional image reference.
	ImageURL string `json:"image_url,omitempty"`
}

// Discrepancy is one line of the reconciliation result.
type Discrepancy struct {
	Identifier   string          `json:"identifier"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Price        float64         `json:"price"`
	Type         DiscrepancyType `json:"type"`
	AutoResolved bool            `json:"auto_resolved"`
	// Reason is empty until the entry is classified (automatically or by the
	// operator).
	Reason Reason `json:"reason,omitempty"`
	// Note is the free-text detail required when Reason is OTHER.
	Note string `json:"note,omitempty"`
}

// Resolved reports whether the entry no longer blocks sign-off: it was
// auto-resolved, or it carries a reason (OTHER additionally needs a note).
func (d Discrepancy) Resolved() bool {
	if d.AutoResolved {
		return true
	}
	if d.Reason == "" {
		return false
	}
	if d.Reason == ReasonOther && d.Note == "" {
		return false
	}
	return true
}

// LastAction records the most recent ledger mutation for operator feedback.
type LastAction struct {
	ItemName   string    `json:"item_name"`
	Identifier string    `json:"identifier"`
	At         time.Time `json:"at"`
}

// Session is one cycle-count instance.
type Session struct {
	ID        string `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	// Items is the ordered expectation list, fixed at session creation.
	Items []Item `json:"items"`
	// Observed is the set of identifiers confirmed present.
	Observed IdentifierSet `json:"observed"`
	Status   Status        `json:"status"`
	// Discrepancies is empty until the reconciliation step runs.
	Discrepancies []Discrepancy `json:"discrepancies"`
	LastAction    *LastAction   `json:"last_action,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	// Version increments on every applied mutation.
	Version uint64 `json:"version"`
}

// NewSession creates a pending session over the given expectation list.
func NewSession(items []Item, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Items:     items,
		Status:    StatusPending,
	}
}

// ItemByIdentifier returns the expectation entry for identifier, or nil.
func (s *Session) ItemByIdentifier(identifier string) *Item {
	for i := range s.Items {
		if s.Items[i].Identifier == identifier {
			return &s.Items[i]
		}
	}
	return nil
}

// DiscrepancyByIdentifier returns the discrepancy for identifier, or nil.
// Each identifier appears in at most one discrepancy.
func (s *Session) DiscrepancyByIdentifier(identifier string) *Discrepancy {
	for i := range s.Discrepancies {
		if s.Discrepancies[i].Identifier == identifier {
			return &s.Discrepancies[i]
		}
	}
	return nil
}

// SameDay reports whether the session was created on the same calendar day
// as t (local time).
func (s *Session) SameDay(t time.Time) bool {
	y1, m1, d1 := s.CreatedAt.Local().Date()
	y2, m2, d2 := t.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Clone returns a deep copy of the session. Mutating the copy never affects
// the original; the engine hands out clones as persistence snapshots.
func (s *Session) Clone() *Session {
	c := *s
	c.Items = make([]Item, len(s.Items))
	copy(c.Items, s.Items)
	c.Discrepancies = make([]Discrepancy, len(s.Discrepancies))
	copy(c.Discrepancies, s.Discrepancies)
	c.Observed = s.Observed.clone()
	if s.LastAction != nil {
		la := *s.LastAction
		c.LastAction = &la
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// Encode serializes the session for the session store.
func (s *Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode deserializes a session from its stored form.
func Decode(payload []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
