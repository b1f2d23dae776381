package simulation

import (
	"maps"
	"slices"
	"sync"

	"github.com/p-n-ai/pai-cohort/internal/shared"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// Roster holds the active students of a run, keyed by id.
type Roster struct {
	students map[int]*student.Student
	mu       sync.RWMutex
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		students: make(map[int]*student.Student),
	}
}

func (r *Roster) Add(s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[s.ID]; ok {
		return shared.ValidationError("roster.Add", "student %d is already active", s.ID)
	}
	r.students[s.ID] = s
	return nil
}

func (r *Roster) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[id]; !ok {
		return shared.NotFound("roster.Remove", "student %d is not active", id)
	}
	delete(r.students, id)
	return nil
}

// Active returns the active students in id order.
func (r *Roster) Active() []*student.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*student.Student, 0, len(r.students))
	for _, id := range slices.Sorted(maps.Keys(r.students)) {
		out = append(out, r.students[id])
	}
	return out
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.students)
}
