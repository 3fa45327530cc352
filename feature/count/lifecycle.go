package count

import (
	"sync"
	"time"

	"cycle-count/feature/count/models"
)

// Engine owns the mutable session aggregate and gates every operation
// through the lifecycle state machine.
//
// All methods are safe for concurrent use; results handed out are deep
// copies, so a returned snapshot can be persisted or inspected without
// holding the engine lock.
type Engine struct {
	mu      sync.Mutex
	session *models.Session
}

// NewEngine creates an engine owning the given session.
func NewEngine(s *models.Session) *Engine {
	return &Engine{session: s}
}

// Snapshot returns a deep copy of the current session.
func (e *Engine) Snapshot() *models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// Replace installs a new session aggregate. Any in-flight reconciliation
// pass launched against the previous session will find its id no longer
// matches and discard its result.
func (e *Engine) Replace(s *models.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = s
}

// Apply runs a ledger command against the session. On success it returns
// the outcome and, when the session changed, a persistence snapshot (nil if
// the command had no effect, e.g. an unconfirmed quantity-to-zero).
func (e *Engine) Apply(cmd Command, now time.Time) (Outcome, *models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !cmd.allowedIn(e.session.Status) {
		return Outcome{}, nil, &StateError{Op: cmd.name(), Status: e.session.Status}
	}

	outcome, err := cmd.apply(e.session, now)
	if err != nil {
		return Outcome{}, nil, err
	}
	if outcome.NeedsConfirmation {
		return outcome, nil, nil
	}

	e.session.Version++
	return outcome, e.session.Clone(), nil
}

// Start confirms the start-count prompt: PENDING -> IN_PROGRESS. A session
// already IN_PROGRESS resumes directly; the returned snapshot is nil since
// nothing changed.
func (e *Engine) Start(now time.Time) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.session.Status {
	case models.StatusPending:
		e.session.Status = models.StatusInProgress
		e.session.Version++
		return e.session.Clone(), nil
	case models.StatusInProgress:
		return nil, nil
	default:
		return nil, &StateError{Op: "start", Status: e.session.Status}
	}
}

// Submit transitions IN_PROGRESS -> RECONCILING. The discrepancy set is
// computed on this edge exactly once: if discrepancies already exist from a
// resumed session, compute is skipped so partially-annotated work is never
// discarded.
func (e *Engine) Submit(compute func(*models.Session) ([]models.Discrepancy, error)) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != models.StatusInProgress {
		return nil, &StateError{Op: "submit", Status: e.session.Status}
	}

	if len(e.session.Discrepancies) == 0 {
		discrepancies, err := compute(e.session)
		if err != nil {
			return nil, err
		}
		e.session.Discrepancies = discrepancies
	}

	e.session.Status = models.StatusReconciling
	e.session.Version++
	return e.session.Clone(), nil
}

// Advance transitions RECONCILING -> AWAITING_SIGNATURE. Refused with the
// blocking identifiers while any discrepancy is neither auto-resolved nor
// fully classified (OTHER requires a note).
func (e *Engine) Advance() (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != models.StatusReconciling {
		return nil, &StateError{Op: "advance", Status: e.session.Status}
	}

	var blocking []string
	for _, d := range e.session.Discrepancies {
		if !d.Resolved() {
			blocking = append(blocking, d.Identifier)
		}
	}
	if len(blocking) > 0 {
		return nil, &TransitionError{
			From:     models.StatusReconciling,
			To:       models.StatusAwaitingSignature,
			Blocking: blocking,
		}
	}

	e.session.Status = models.StatusAwaitingSignature
	e.session.Version++
	return e.session.Clone(), nil
}

// Retreat walks one step back for operator correction: RECONCILING ->
// IN_PROGRESS or AWAITING_SIGNATURE -> RECONCILING. Collected scans and
// discrepancy annotations are kept.
func (e *Engine) Retreat() (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.session.Status {
	case models.StatusReconciling:
		e.session.Status = models.StatusInProgress
	case models.StatusAwaitingSignature:
		e.session.Status = models.StatusReconciling
	default:
		return nil, &StateError{Op: "retreat", Status: e.session.Status}
	}

	e.session.Version++
	return e.session.Clone(), nil
}

// ConfirmSignature completes the session: AWAITING_SIGNATURE -> COMPLETED
// with a completion timestamp. After this the session is read-only.
func (e *Engine) ConfirmSignature(now time.Time) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != models.StatusAwaitingSignature {
		return nil, &StateError{Op: "confirm-signature", Status: e.session.Status}
	}

	e.session.Status = models.StatusCompleted
	e.session.CompletedAt = &now
	e.session.Version++
	return e.session.Clone(), nil
}

// pendingResolutions returns the session id and the identifiers of
// discrepancies the auto-reconciliation pass should query: not yet
// auto-resolved and not manually classified.
func (e *Engine) pendingResolutions() (string, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != models.StatusReconciling {
		return "", nil, &StateError{Op: "auto-reconcile", Status: e.session.Status}
	}

	var pending []string
	for _, d := range e.session.Discrepancies {
		if !d.AutoResolved && d.Reason == "" {
			pending = append(pending, d.Identifier)
		}
	}
	return e.session.ID, pending, nil
}

// applyResolutions applies oracle answers as a single atomic update. The
// update is discarded when sessionID no longer matches the current session
// (a stale result from a replaced session) — reported via the second return,
// never as an error. Entries settled while the pass was in flight are
// skipped.
func (e *Engine) applyResolutions(sessionID string, reasons map[string]models.Reason) (*models.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.ID != sessionID {
		return nil, false
	}

	changed := false
	for i := range e.session.Discrepancies {
		d := &e.session.Discrepancies[i]
		if d.AutoResolved || d.Reason != "" {
			continue
		}
		reason, ok := reasons[d.Identifier]
		if !ok {
			continue
		}
		d.AutoResolved = true
		d.Reason = reason
		changed = true
	}

	if changed {
		e.session.Version++
	}
	return e.session.Clone(), true
}
