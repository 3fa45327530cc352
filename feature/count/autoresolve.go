package count

import (
	"context"
	"fmt"

	"cycle-count/feature/count/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Oracle answers whether an external system event explains a discrepancy.
// The boolean reports whether an explanation exists; no explanation is a
// defined outcome, not an error.
type Oracle interface {
	Explain(ctx context.Context, identifier string) (models.Reason, bool, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, identifier string) (models.Reason, bool, error)

func (f OracleFunc) Explain(ctx context.Context, identifier string) (models.Reason, bool, error) {
	return f(ctx, identifier)
}

// ResolveResult reports the outcome of an auto-reconciliation pass.
type ResolveResult struct {
	// Applied is false when the result was discarded as stale (the session
	// was replaced while the pass was in flight).
	Applied bool
	// Explained is the number of discrepancies the oracle explained.
	Explained int
	// Snapshot is the session after the atomic update, nil when discarded.
	Snapshot *models.Session
}

// Resolver runs the operator-triggered auto-reconciliation pass.
//
// The pass is single-flight per session: a second trigger while one is in
// flight joins the running pass instead of racing it. Re-running a finished
// pass is safe — already-resolved or manually-classified entries are never
// re-queried or un-resolved.
type Resolver struct {
	engine *Engine
	oracle Oracle
	logger *zap.Logger
	group  singleflight.Group
}

// NewResolver creates a resolver bound to the engine's session.
func NewResolver(engine *Engine, oracle Oracle, logger *zap.Logger) *Resolver {
	return &Resolver{
		engine: engine,
		oracle: oracle,
		logger: logger,
	}
}

// Run executes one pass: query the oracle for every unclassified
// discrepancy, then apply all answers as a single atomic ledger update.
// The update carries the session id it was launched against and is
// discarded if the session has since been replaced.
func (r *Resolver) Run(ctx context.Context) (*ResolveResult, error) {
	sessionID, pending, err := r.engine.pendingResolutions()
	if err != nil {
		return nil, err
	}

	v, err, shared := r.group.Do(sessionID, func() (interface{}, error) {
		reasons := make(map[string]models.Reason, len(pending))
		for _, identifier := range pending {
			reason, ok, err := r.oracle.Explain(ctx, identifier)
			if err != nil {
				// Abort without applying anything: the discrepancy list is
				// never left partially annotated by a failed pass.
				return nil, fmt.Errorf("oracle query for %s: %w", identifier, err)
			}
			if ok {
				reasons[identifier] = reason
			}
		}

		snapshot, applied := r.engine.applyResolutions(sessionID, reasons)
		if !applied {
			r.logger.Info("discarding stale reconciliation result",
				zap.String("session_id", sessionID),
			)
		}
		return &ResolveResult{
			Applied:   applied,
			Explained: len(reasons),
			Snapshot:  snapshot,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("joined in-flight reconciliation pass",
			zap.String("session_id", sessionID),
		)
	}

	return v.(*ResolveResult), nil
}
