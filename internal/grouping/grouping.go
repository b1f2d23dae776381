// Package grouping partitions students into groups whose current schedules
// are connected through shared courses.
package grouping

import (
	"cmp"
	"slices"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/shared"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// Group is a connected set of courses and the students scheduled in them.
type Group struct {
	Courses  []*curriculum.Course
	Students []*student.Student
}

// Schedule returns a student's current courses, minus those named in
// ignore.
func Schedule(s *student.Student, ignore map[string]bool) []*curriculum.Course {
	var out []*curriculum.Course
	for _, c := range s.Enrolled() {
		if !ignore[c.Name()] {
			out = append(out, c)
		}
	}
	return out
}

// IgnoreSet builds an ignore set from course names.
func IgnoreSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Partition merges students whose schedules share at least one course,
// after removing ignored courses. Students left with an empty schedule
// belong to no group. Groups are ordered by their lowest course id.
func Partition(students []*student.Student, ignore map[string]bool) []Group {
	index := make(map[*curriculum.Course]int)
	var courses []*curriculum.Course
	schedules := make([][]*curriculum.Course, len(students))

	for i, s := range students {
		schedules[i] = Schedule(s, ignore)
		for _, c := range schedules[i] {
			if _, ok := index[c]; !ok {
				index[c] = len(courses)
				courses = append(courses, c)
			}
		}
	}

	ds := NewDisjointSet(len(courses))
	for _, sched := range schedules {
		for _, c := range sched[min(1, len(sched)):] {
			ds.Union(index[sched[0]], index[c])
		}
	}

	byRoot := make(map[int]*Group, ds.Sets())
	groups := make([]*Group, 0, ds.Sets())
	get := func(root int) *Group {
		g, ok := byRoot[root]
		if !ok {
			g = &Group{}
			byRoot[root] = g
			groups = append(groups, g)
		}
		return g
	}
	for i, c := range courses {
		g := get(ds.Find(i))
		g.Courses = append(g.Courses, c)
	}
	for i, sched := range schedules {
		if len(sched) == 0 {
			continue
		}
		g := get(ds.Find(index[sched[0]]))
		g.Students = append(g.Students, students[i])
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		slices.SortFunc(g.Courses, func(a, b *curriculum.Course) int { return cmp.Compare(a.ID(), b.ID()) })
		out[i] = *g
	}
	slices.SortFunc(out, func(a, b Group) int { return cmp.Compare(a.Courses[0].ID(), b.Courses[0].ID()) })
	return out
}

// Verify checks that groups are pairwise disjoint and that every student
// with a non-empty schedule touches exactly one group.
func Verify(students []*student.Student, groups []Group, ignore map[string]bool) error {
	const op = "grouping.Verify"

	owner := make(map[*curriculum.Course]int)
	for gi, g := range groups {
		for _, c := range g.Courses {
			if prev, ok := owner[c]; ok {
				return shared.ValidationError(op, "course %s is in groups %d and %d", c.Name(), prev, gi)
			}
			owner[c] = gi
		}
	}

	for _, s := range students {
		touched := -1
		for _, c := range Schedule(s, ignore) {
			gi, ok := owner[c]
			if !ok {
				return shared.ValidationError(op, "student %d takes %s, which is in no group", s.ID, c.Name())
			}
			if touched >= 0 && gi != touched {
				return shared.ValidationError(op, "student %d belongs to groups %d and %d", s.ID, touched, gi)
			}
			touched = gi
		}
	}
	return nil
}
