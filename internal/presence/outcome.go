package presence

// OutcomeKind classifies what happened to one pair (or, for format_error,
// to the whole batch).
type OutcomeKind string

const (
	OutcomeFormatError   OutcomeKind = "format_error"
	OutcomeInvalidID     OutcomeKind = "invalid_id"
	OutcomeInvalidStatus OutcomeKind = "invalid_status"
	OutcomeUnknownPerson OutcomeKind = "unknown_person"
	OutcomeStorageError  OutcomeKind = "storage_error"
	OutcomeStatusChanged OutcomeKind = "status_changed"
)

// PairOutcome is the client-facing classification of one pair, in
// submitted order. Old/New carry the 0/1 wire encoding; Old is absent
// when the previous status was unset.
type PairOutcome struct {
	Kind      OutcomeKind `json:"kind"`
	PersonID  int64       `json:"id,omitempty"`
	RawID     string      `json:"raw_id,omitempty"`
	RawStatus string      `json:"raw_status,omitempty"`
	Old       *int        `json:"old,omitempty"`
	New       *int        `json:"new,omitempty"`
}

// BatchResult aggregates one ApplyBatch run. FormatError marks the
// all-or-nothing parse failure; in that case Outcomes holds the single
// format_error entry and nothing was mutated.
type BatchResult struct {
	FormatError bool
	Updated     int
	Outcomes    []PairOutcome
}
