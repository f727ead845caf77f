package roster

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the roster in process memory. It backs tests and
// DB-less development; the ID counter only moves forward so deleted IDs
// stay unknown, like the SQL implementation.
type MemoryStore struct {
	mu     sync.RWMutex
	people map[int64]Person
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{people: map[int64]Person{}, nextID: 1}
}

func (m *MemoryStore) List(_ context.Context) ([]Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]Person, 0, len(m.people))
	for _, p := range m.people {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return all, nil
}

func (m *MemoryStore) Create(_ context.Context, f Fields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.people[id] = Person{
		ID:         id,
		Name:       f.Name,
		Department: f.Department,
		Grade:      f.Grade,
		Role:       f.Role,
		Room:       f.Room,
		Status:     StatusUnset,
	}
	return id, nil
}

func (m *MemoryStore) Update(_ context.Context, id int64, f Fields) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.people[id]
	if !ok {
		return false, nil
	}
	p.Name = f.Name
	p.Department = f.Department
	p.Grade = f.Grade
	p.Role = f.Role
	p.Room = f.Room
	m.people[id] = p
	return true, nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.people[id]; !ok {
		return false, nil
	}
	delete(m.people, id)
	return true, nil
}

func (m *MemoryStore) SetStatus(_ context.Context, id int64, s Status, at time.Time) (Status, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.people[id]
	if !ok {
		return StatusUnset, false, nil
	}
	old := p.Status
	p.Status = s
	t := at
	p.StatusAt = &t
	m.people[id] = p
	return old, true, nil
}

// Get returns a copy of one person; nil when absent. Not part of Store,
// used by tests to assert on state.
func (m *MemoryStore) Get(id int64) *Person {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.people[id]
	if !ok {
		return nil
	}
	return &p
}
