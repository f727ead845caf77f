package roster

import "time"

// Status is the tri-state presence value for a person. Unset means the
// status has never been written since the record was created.
type Status int

const (
	StatusUnset Status = iota
	StatusUnavailable
	StatusAvailable
)

// Wire returns the 0/1/nil encoding used by the HTTP API and storage.
func (s Status) Wire() *int {
	switch s {
	case StatusAvailable:
		v := 1
		return &v
	case StatusUnavailable:
		v := 0
		return &v
	default:
		return nil
	}
}

// StatusFromWire maps a stored 0/1 value back to the enum; nil means Unset.
func StatusFromWire(v *int) Status {
	if v == nil {
		return StatusUnset
	}
	if *v == 1 {
		return StatusAvailable
	}
	return StatusUnavailable
}

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unset"
	}
}

// Person is one roster entry. StatusAt is non-nil exactly when Status is
// not Unset.
type Person struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Department string     `json:"department"`
	Grade      string     `json:"grade"`
	Role       string     `json:"role"`
	Room       string     `json:"room"`
	Status     Status     `json:"-"`
	StatusAt   *time.Time `json:"-"`
}

// Fields is the mutable descriptive part of a Person; status is deliberately
// absent because it is only ever written through the update pipeline.
type Fields struct {
	Name       string
	Department string
	Grade      string
	Role       string
	Room       string
}
