package roster

import (
	"context"
	"time"
)

// Store is the persistent mapping from person ID to Person. Mutating calls
// are individually atomic; nothing here spans more than one store call.
type Store interface {
	// List returns the full roster with current statuses, ordered by
	// department, room, name.
	List(ctx context.Context) ([]Person, error)

	// Create inserts a new person with the given fields, status Unset, and
	// returns the store-assigned ID. IDs are never reused.
	Create(ctx context.Context, f Fields) (int64, error)

	// Update replaces the descriptive fields of an existing person. It
	// returns false when no person with that ID exists.
	Update(ctx context.Context, id int64, f Fields) (bool, error)

	// Delete removes a person and their status. Deleting an unknown ID is
	// a no-op and returns false.
	Delete(ctx context.Context, id int64) (bool, error)

	// SetStatus writes status and timestamp for an existing person in one
	// atomic step and reports the previous status. ok is false when the ID
	// is unknown, in which case nothing was written.
	SetStatus(ctx context.Context, id int64, s Status, at time.Time) (old Status, ok bool, err error)
}
