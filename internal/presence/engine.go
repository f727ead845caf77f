package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inoutboard/internal/auditlog"
	"inoutboard/internal/roster"
)

// Engine orchestrates one status-update batch: parse, validate, resolve
// against the store, apply, classify, audit. Pairs are independent; one
// pair's failure never rolls back another's success. The only
// all-or-nothing step is the parse stage.
type Engine struct {
	store roster.Store
	audit auditlog.Logger
	log   *zap.Logger
	now   func() time.Time
}

func NewEngine(store roster.Store, audit auditlog.Logger, log *zap.Logger) *Engine {
	if audit == nil {
		audit = auditlog.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, audit: audit, log: log, now: time.Now}
}

// ApplyBatch processes one raw data payload and returns the per-pair
// breakdown in submitted order.
func (e *Engine) ApplyBatch(ctx context.Context, raw string) BatchResult {
	batchID := uuid.NewString()
	batchesTotal.Inc()

	pairs, err := ParseBatch(raw)
	if err != nil {
		e.audit.Record(auditlog.FormatError,
			zap.String("batch", batchID),
			zap.String("payload", raw),
			zap.String("reason", err.Error()),
		)
		outcomesTotal.WithLabelValues(string(OutcomeFormatError)).Inc()
		return BatchResult{
			FormatError: true,
			Outcomes:    []PairOutcome{{Kind: OutcomeFormatError}},
		}
	}

	var res BatchResult
	for _, p := range pairs {
		out := e.applyPair(ctx, batchID, raw, p)
		outcomesTotal.WithLabelValues(string(out.Kind)).Inc()
		if out.Kind == OutcomeStatusChanged {
			res.Updated++
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	return res
}

func (e *Engine) applyPair(ctx context.Context, batchID, raw string, p TokenPair) PairOutcome {
	id, status, bad := ValidatePair(p)
	if bad != nil {
		e.audit.Record(auditlog.FormatError,
			zap.String("batch", batchID),
			zap.String("kind", string(bad.Kind)),
			zap.String("raw_id", p.RawID),
			zap.String("raw_status", p.RawStatus),
			zap.String("payload", raw),
		)
		return *bad
	}

	old, ok, err := e.store.SetStatus(ctx, id, status, e.now())
	if err != nil {
		e.log.Error("status write failed",
			zap.Int64("person_id", id),
			zap.String("batch", batchID),
			zap.Error(err),
		)
		return PairOutcome{Kind: OutcomeStorageError, PersonID: id, RawStatus: p.RawStatus}
	}
	if !ok {
		e.audit.Record(auditlog.UnregisteredID,
			zap.String("batch", batchID),
			zap.Int64("person_id", id),
			zap.String("payload", raw),
		)
		return PairOutcome{Kind: OutcomeUnknownPerson, PersonID: id}
	}

	// A write to the same status still counts: the timestamp advanced,
	// and the board treats it as a fresh heartbeat.
	e.audit.Record(auditlog.StatusChange,
		zap.String("batch", batchID),
		zap.Int64("person_id", id),
		zap.String("old", old.String()),
		zap.String("new", status.String()),
	)
	return PairOutcome{
		Kind:     OutcomeStatusChanged,
		PersonID: id,
		Old:      old.Wire(),
		New:      status.Wire(),
	}
}
