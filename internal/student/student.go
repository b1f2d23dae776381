// Package student holds the mutable per-student state of the simulation:
// credits, passed and failed courses, honors flags and enrollment history.
package student

import (
	"fmt"
	"maps"
	"slices"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/shared"
)

// Student is one simulated student. Courses are held by reference and
// keyed by id; the catalog owns them.
type Student struct {
	ID        int
	FirstName string
	LastName  string
	Age       int
	Grade     int

	info    []string
	passed  map[int]*curriculum.Course
	failed  map[int]*curriculum.Course
	honors  map[int]*curriculum.Course
	credits map[string]float64
	total   float64
	history [][]*curriculum.Course
}

// New creates a student with an empty history. BeginNewYear must be called
// before the first Enroll.
func New(id int, firstName, lastName string, age, grade int) *Student {
	return &Student{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Age:       age,
		Grade:     grade,
		passed:    make(map[int]*curriculum.Course),
		failed:    make(map[int]*curriculum.Course),
		honors:    make(map[int]*curriculum.Course),
		credits:   make(map[string]float64),
	}
}

// Name returns "First Last".
func (s *Student) Name() string {
	return s.FirstName + " " + s.LastName
}

// BeginNewYear opens an empty schedule for the coming year.
func (s *Student) BeginNewYear() {
	s.history = append(s.history, nil)
}

// Msg records a note about the student.
func (s *Student) Msg(format string, args ...any) {
	s.info = append(s.info, fmt.Sprintf(format, args...))
}

// Info returns the notes recorded so far.
func (s *Student) Info() []string {
	return slices.Clone(s.info)
}

// Enroll adds course to the current year's schedule. With allowRetake a
// previous pass is revoked so the course can be completed again.
func (s *Student) Enroll(course *curriculum.Course, asHonors, allowRetake bool) error {
	const op = "student.Enroll"
	if len(s.history) == 0 {
		return shared.StateError(op, "student %d: BeginNewYear must be called before enrolling", s.ID)
	}
	if asHonors && !course.HasHonors() {
		return shared.ValidationError(op, "course %s does not have honors", course.Name())
	}
	if s.IsEnrolledIn(course) {
		return shared.ValidationError(op, "student %d is already enrolled in %s", s.ID, course.Name())
	}

	if allowRetake {
		delete(s.passed, course.ID())
	}
	cur := len(s.history) - 1
	s.history[cur] = append(s.history[cur], course)
	if asHonors {
		s.honors[course.ID()] = course
	} else {
		delete(s.honors, course.ID())
	}
	return nil
}

// Pass records a pass and confers the course's credits. Passing with
// honors requires an honors enrollment unless overrideHonors is set
// (placement credit). A pass without honors drops the honors flag.
func (s *Student) Pass(course *curriculum.Course, asHonors, overrideHonors bool) error {
	const op = "student.Pass"
	if s.HasPassed(course) {
		return shared.ValidationError(op, "student %d has already passed %s", s.ID, course.Name())
	}

	id := course.ID()
	switch {
	case asHonors && overrideHonors:
		if course.HasHonors() {
			s.honors[id] = course
		}
	case asHonors:
		if _, ok := s.honors[id]; !ok {
			return shared.ValidationError(op, "student %d is not taking %s with honors", s.ID, course.Name())
		}
	default:
		delete(s.honors, id)
	}

	delete(s.failed, id)
	s.passed[id] = course
	course.Confer(s)
	return nil
}

// Fail records a failed attempt. Courses already passed cannot be failed.
func (s *Student) Fail(course *curriculum.Course) error {
	if s.HasPassed(course) {
		return shared.ValidationError("student.Fail", "student %d has already passed %s", s.ID, course.Name())
	}
	s.failed[course.ID()] = course
	delete(s.honors, course.ID())
	return nil
}

// GiveCredits adds amount to each category and to the total.
func (s *Student) GiveCredits(categories []string, amount float64) {
	for _, c := range categories {
		s.credits[c] += amount
	}
	s.total += amount
}

// CurrentGrade returns the grade level.
func (s *Student) CurrentGrade() int { return s.Grade }

// Enrolled returns the current year's schedule (nil before BeginNewYear).
func (s *Student) Enrolled() []*curriculum.Course {
	if len(s.history) == 0 {
		return nil
	}
	return slices.Clone(s.history[len(s.history)-1])
}

// History returns every year's schedule, oldest first.
func (s *Student) History() [][]*curriculum.Course {
	out := make([][]*curriculum.Course, len(s.history))
	for i, year := range s.history {
		out[i] = slices.Clone(year)
	}
	return out
}

// Years returns how many years have been started.
func (s *Student) Years() int { return len(s.history) }

// IsEnrolledIn reports whether the course is on the current schedule.
func (s *Student) IsEnrolledIn(course *curriculum.Course) bool {
	if len(s.history) == 0 {
		return false
	}
	return slices.Contains(s.history[len(s.history)-1], course)
}

// IsEnrolledInHonors reports whether the course is on the current schedule
// with honors.
func (s *Student) IsEnrolledInHonors(course *curriculum.Course) bool {
	_, ok := s.honors[course.ID()]
	return ok && s.IsEnrolledIn(course)
}

// HasTaken reports whether the course was attempted (passed or failed).
func (s *Student) HasTaken(course *curriculum.Course) bool {
	_, passed := s.passed[course.ID()]
	_, failed := s.failed[course.ID()]
	return passed || failed
}

// HasPassed reports whether the course was passed.
func (s *Student) HasPassed(course *curriculum.Course) bool {
	_, ok := s.passed[course.ID()]
	return ok
}

// HasFailed reports whether the course's latest outcome was a failure.
func (s *Student) HasFailed(course *curriculum.Course) bool {
	_, ok := s.failed[course.ID()]
	return ok
}

// Passed returns the passed courses in id order.
func (s *Student) Passed() []*curriculum.Course { return sortedCourses(s.passed) }

// Failed returns the failed courses in id order.
func (s *Student) Failed() []*curriculum.Course { return sortedCourses(s.failed) }

// Honors returns the courses held with honors in id order.
func (s *Student) Honors() []*curriculum.Course { return sortedCourses(s.honors) }

// HonorsCount returns how many courses are held with honors.
func (s *Student) HonorsCount() int { return len(s.honors) }

// Credits returns a copy of the credits earned per category.
func (s *Student) Credits() map[string]float64 { return maps.Clone(s.credits) }

// Credit returns the credits earned in one category.
func (s *Student) Credit(category string) float64 { return s.credits[category] }

// TotalCredits returns every credit earned.
func (s *Student) TotalCredits() float64 { return s.total }

func sortedCourses(m map[int]*curriculum.Course) []*curriculum.Course {
	out := make([]*curriculum.Course, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}
