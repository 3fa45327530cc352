package count

import (
	"context"
	"fmt"
	"time"

	"cycle-count/core/store"
	"cycle-count/feature/count/models"

	"go.uber.org/zap"
)

// ExpectationSource supplies the day's expectation list at session creation.
type ExpectationSource interface {
	ListExpected(ctx context.Context) ([]models.Item, error)
}

// State is the session view exposed to the UI layer.
type State struct {
	Session   *models.Session `json:"session"`
	Progress  Progress        `json:"progress"`
	Partition Partition       `json:"partition"`
	Summary   Summary         `json:"summary"`
}

// Service orchestrates the engine, the durable store, and the external
// collaborators. Every mutation persists the full session snapshot before
// the operation is considered complete.
type Service struct {
	logger   *zap.Logger
	store    store.Store
	catalog  Lookup
	source   ExpectationSource
	engine   *Engine
	resolver *Resolver
	now      func() time.Time
}

// NewService loads the active session from the store (or creates a fresh
// one from the expectation source) and wires the engine.
//
// A stored session is resumed when it belongs to the current calendar day,
// or when it is unfinished (collected scans are never discarded). A
// completed session from a previous day is replaced by a new one; the old
// record becomes history owned by the external history collaborator.
func NewService(
	ctx context.Context,
	logger *zap.Logger,
	st store.Store,
	catalog Lookup,
	source ExpectationSource,
	oracle Oracle,
) (*Service, error) {
	s := &Service{
		logger:  logger,
		store:   st,
		catalog: catalog,
		source:  source,
		now:     time.Now,
	}

	session, err := s.loadOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	s.engine = NewEngine(session)
	s.resolver = NewResolver(s.engine, oracle, logger)
	return s, nil
}

func (s *Service) loadOrCreate(ctx context.Context) (*models.Session, error) {
	payload, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if payload != nil {
		session, err := models.Decode(payload)
		if err != nil {
			// A corrupt record is treated as absent: start fresh rather
			// than refuse to count.
			s.logger.Warn("stored session unreadable, starting fresh", zap.Error(err))
		} else {
			replace := session.Status == models.StatusCompleted && !session.SameDay(s.now())
			if !replace {
				s.logger.Info("resuming persisted session",
					zap.String("session_id", session.ID),
					zap.String("status", string(session.Status)),
				)
				return session, nil
			}
			s.logger.Info("previous day's session completed, creating new session",
				zap.String("previous_id", session.ID),
			)
		}
	}

	return s.createSession(ctx)
}

func (s *Service) createSession(ctx context.Context) (*models.Session, error) {
	items, err := s.source.ListExpected(ctx)
	if err != nil {
		return nil, fmt.Errorf("build expectation list: %w", err)
	}

	session := models.NewSession(items, s.now())
	s.logger.Info("created session",
		zap.String("session_id", session.ID),
		zap.Int("expected_items", len(items)),
	)
	s.persist(ctx, session)
	return session, nil
}

// persist writes the snapshot to the store. Failures are logged, not
// returned: the Fallback store degrades to memory so a storage fault never
// blocks counting.
func (s *Service) persist(ctx context.Context, snapshot *models.Session) {
	if snapshot == nil {
		return
	}
	payload, err := snapshot.Encode()
	if err != nil {
		s.logger.Error("failed to encode session", zap.Error(err))
		return
	}
	if err := s.store.Save(ctx, payload); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}

// State returns the current session view.
func (s *Service) State() State {
	session := s.engine.Snapshot()
	return State{
		Session:   session,
		Progress:  CountProgress(session),
		Partition: PartitionItems(session),
		Summary:   Summarize(session),
	}
}

// Scan applies a scan event. A duplicate scan is a defined outcome, not an
// error.
func (s *Service) Scan(ctx context.Context, identifier string) (Outcome, error) {
	outcome, snapshot, err := s.engine.Apply(ScanCommand{Identifier: identifier}, s.now())
	if err != nil {
		return Outcome{}, err
	}
	s.persist(ctx, snapshot)
	return outcome, nil
}

// SetQuantity applies a manual quantity entry for an aggregate SKU.
func (s *Service) SetQuantity(ctx context.Context, sku string, quantity int, confirmZero bool) (Outcome, error) {
	cmd := SetQuantityCommand{SKU: sku, Count: quantity, ConfirmZero: confirmZero}
	outcome, snapshot, err := s.engine.Apply(cmd, s.now())
	if err != nil {
		return Outcome{}, err
	}
	s.persist(ctx, snapshot)
	return outcome, nil
}

// SetDiscrepancyReason classifies a discrepancy manually.
func (s *Service) SetDiscrepancyReason(ctx context.Context, identifier string, reason models.Reason, note string) error {
	cmd := SetReasonCommand{Identifier: identifier, Reason: reason, Note: note}
	_, snapshot, err := s.engine.Apply(cmd, s.now())
	if err != nil {
		return err
	}
	s.persist(ctx, snapshot)
	return nil
}

// Start confirms the start-count prompt.
func (s *Service) Start(ctx context.Context) error {
	snapshot, err := s.engine.Start(s.now())
	if err != nil {
		return err
	}
	s.persist(ctx, snapshot)
	return nil
}

// Submit ends counting and runs the discrepancy calculator once.
func (s *Service) Submit(ctx context.Context) error {
	snapshot, err := s.engine.Submit(func(session *models.Session) ([]models.Discrepancy, error) {
		return ComputeDiscrepancies(ctx, session, s.catalog)
	})
	if err != nil {
		return err
	}
	s.persist(ctx, snapshot)
	return nil
}

// AutoReconcile runs the auto-reconciliation pass.
func (s *Service) AutoReconcile(ctx context.Context) (*ResolveResult, error) {
	result, err := s.resolver.Run(ctx)
	if err != nil {
		return nil, err
	}
	if result.Applied {
		s.persist(ctx, result.Snapshot)
	}
	return result, nil
}

// Advance moves the session toward sign-off.
func (s *Service) Advance(ctx context.Context) error {
	snapshot, err := s.engine.Advance()
	if err != nil {
		return err
	}
	s.persist(ctx, snapshot)
	return nil
}

// Retreat walks one lifecycle step back for operator correction.
func (s *Service) Retreat(ctx context.Context) error {
	snapshot, err := s.engine.Retreat()
	if err != nil {
		return err
	}
	s.persist(ctx, snapshot)
	return nil
}

// ConfirmSignature completes the session. The transition is persisted
// immediately; afterwards the session is read-only.
func (s *Service) ConfirmSignature(ctx context.Context) error {
	snapshot, err := s.engine.ConfirmSignature(s.now())
	if err != nil {
		return err
	}
	s.persist(ctx, snapshot)
	return nil
}
