package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"inoutboard/internal/auditlog"
)

// RecordOutcomeKind classifies what happened to one submitted record or
// delete ID during reconciliation.
type RecordOutcomeKind string

const (
	RecordCreated      RecordOutcomeKind = "created"
	RecordUpdated      RecordOutcomeKind = "updated"
	RecordUnknown      RecordOutcomeKind = "unknown_person"
	RecordInvalid      RecordOutcomeKind = "invalid_record"
	RecordStorageError RecordOutcomeKind = "storage_error"
	RecordDeleted      RecordOutcomeKind = "deleted"
	RecordDeleteNoop   RecordOutcomeKind = "noop"
)

// RecordOutcome is the per-record entry in a ReconcileResult. Index is the
// position in the submitted array for record outcomes, -1 for deletes.
type RecordOutcome struct {
	Kind   RecordOutcomeKind `json:"kind"`
	ID     int64             `json:"id,omitempty"`
	Index  int               `json:"index"`
	Detail string            `json:"detail,omitempty"`
}

// ReconcileResult summarizes one reconcile run.
type ReconcileResult struct {
	Inserted int             `json:"inserted"`
	Updated  int             `json:"updated"`
	Deleted  int             `json:"deleted"`
	Outcomes []RecordOutcome `json:"outcomes"`
}

// OptionalID accepts the admin front-end's loose id encodings: a JSON
// number, a numeric string, or any of null / "" / "null" for "no id".
type OptionalID struct {
	Value int64
	Set   bool
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var inner string
		if err := json.Unmarshal(b, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" || strings.EqualFold(inner, "null") {
			return nil
		}
		s = inner
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id value %q", s)
	}
	o.Value = v
	o.Set = true
	return nil
}

// RecordInput is the explicit shape a submitted roster row must have. A
// record with an id updates that person; without one it creates a new
// person. Status is intentionally not part of this shape: roster edits
// decide who exists, never what state they are in.
type RecordInput struct {
	ID         OptionalID `json:"id"`
	Name       string     `json:"name"`
	Department string     `json:"department"`
	Grade      string     `json:"grade"`
	Role       string     `json:"role"`
	Room       string     `json:"room"`
}

func (r RecordInput) fields() Fields {
	return Fields{Name: r.Name, Department: r.Department, Grade: r.Grade, Role: r.Role, Room: r.Room}
}

// Reconciler applies a submitted roster subset against the store:
// explicit deletions first, then per-record create/update. Records are
// independent; one record's failure never blocks the rest.
type Reconciler struct {
	store Store
	audit auditlog.Logger
	log   *zap.Logger
}

func NewReconciler(store Store, audit auditlog.Logger, log *zap.Logger) *Reconciler {
	if audit == nil {
		audit = auditlog.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{store: store, audit: audit, log: log}
}

// Reconcile applies deleteIDs, then each raw record in submitted order.
// Malformed entries yield an invalid_record outcome for that entry only.
func (rc *Reconciler) Reconcile(ctx context.Context, records []json.RawMessage, deleteIDs []int64) ReconcileResult {
	var res ReconcileResult

	for _, id := range deleteIDs {
		out := rc.deleteOne(ctx, id)
		if out.Kind == RecordDeleted {
			res.Deleted++
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	for i, raw := range records {
		out := rc.applyRecord(ctx, raw)
		out.Index = i
		switch out.Kind {
		case RecordCreated:
			res.Inserted++
		case RecordUpdated:
			res.Updated++
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	return res
}

func (rc *Reconciler) deleteOne(ctx context.Context, id int64) RecordOutcome {
	gone, err := rc.store.Delete(ctx, id)
	if err != nil {
		rc.log.Error("roster delete failed", zap.Int64("person_id", id), zap.Error(err))
		return RecordOutcome{Kind: RecordStorageError, ID: id, Index: -1, Detail: "delete failed"}
	}
	if !gone {
		// Deleting someone who is already gone is what the two-phase
		// admin save protocol expects on retry.
		return RecordOutcome{Kind: RecordDeleteNoop, ID: id, Index: -1}
	}
	return RecordOutcome{Kind: RecordDeleted, ID: id, Index: -1}
}

func (rc *Reconciler) applyRecord(ctx context.Context, raw json.RawMessage) RecordOutcome {
	var rec RecordInput
	if err := json.Unmarshal(raw, &rec); err != nil {
		return RecordOutcome{Kind: RecordInvalid, Detail: err.Error()}
	}

	if !rec.ID.Set {
		id, err := rc.store.Create(ctx, rec.fields())
		if err != nil {
			rc.log.Error("roster insert failed", zap.Error(err))
			return RecordOutcome{Kind: RecordStorageError, Detail: "insert failed"}
		}
		return RecordOutcome{Kind: RecordCreated, ID: id}
	}

	ok, err := rc.store.Update(ctx, rec.ID.Value, rec.fields())
	if err != nil {
		rc.log.Error("roster update failed", zap.Int64("person_id", rec.ID.Value), zap.Error(err))
		return RecordOutcome{Kind: RecordStorageError, ID: rec.ID.Value, Detail: "update failed"}
	}
	if !ok {
		rc.audit.Record(auditlog.UnregisteredID,
			zap.Int64("person_id", rec.ID.Value),
			zap.String("source", "bulk_update"),
		)
		return RecordOutcome{Kind: RecordUnknown, ID: rec.ID.Value}
	}
	return RecordOutcome{Kind: RecordUpdated, ID: rec.ID.Value}
}
