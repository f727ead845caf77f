// Package presence implements the bulk status-update pipeline: parsing the
// device payload, classifying every (id, status) pair, applying valid
// updates against the roster store, and recording the audit trail.
package presence

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"inoutboard/internal/roster"
)

// TokenPair is one raw (id, status) unit of work, still unvalidated.
type TokenPair struct {
	RawID     string
	RawStatus string
}

var (
	ErrEmptyBatch    = errors.New("empty payload")
	ErrOddTokenCount = errors.New("odd number of tokens")
)

// tokenSep matches one separator run between tokens: a comma, whitespace,
// or any mix of the two.
var tokenSep = regexp.MustCompile(`[,\s]+`)

// ParseBatch splits the raw data parameter into ordered token pairs.
// Tokens are separated by commas (runs of whitespace are tolerated, some
// device firmware pads with it). An empty payload or an odd token count is
// a batch-level format error: no pair of the batch may be processed.
// A leading or trailing comma leaves an empty boundary token, which counts
// toward the token total; "1,1," is three tokens and fails as odd.
func ParseBatch(raw string) ([]TokenPair, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyBatch
	}

	tokens := tokenSep.Split(trimmed, -1)
	if len(tokens)%2 != 0 {
		return nil, ErrOddTokenCount
	}

	pairs := make([]TokenPair, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		pairs = append(pairs, TokenPair{RawID: tokens[i], RawStatus: tokens[i+1]})
	}
	return pairs, nil
}

// ValidatePair checks one token pair: the ID token must parse as a
// positive integer and the status token must be exactly "0" or "1".
// Either violation is a pair-level outcome; sibling pairs still process.
// Returns the typed id and status on success, or a non-nil outcome.
func ValidatePair(p TokenPair) (int64, roster.Status, *PairOutcome) {
	id, err := strconv.ParseInt(p.RawID, 10, 64)
	if err != nil || id <= 0 {
		return 0, roster.StatusUnset, &PairOutcome{
			Kind:      OutcomeInvalidID,
			RawID:     p.RawID,
			RawStatus: p.RawStatus,
		}
	}

	switch p.RawStatus {
	case "1":
		return id, roster.StatusAvailable, nil
	case "0":
		return id, roster.StatusUnavailable, nil
	default:
		return 0, roster.StatusUnset, &PairOutcome{
			Kind:      OutcomeInvalidStatus,
			PersonID:  id,
			RawStatus: p.RawStatus,
		}
	}
}
