// Package enrollment decides what students take each year: the course
// suggestion engine, the year advancement process and freshman enrollment.
package enrollment

import (
	"math/rand/v2"
	"slices"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// SuggestOptions narrows what Suggest returns.
type SuggestOptions struct {
	IgnoreElectives bool
	IgnoreSpecials  bool
}

// Suggest splits the courses the student may enroll in into required ones,
// which count toward an unmet graduation requirement, and optional ones.
// Electives are always optional. Both lists are in id order.
func Suggest(cat *curriculum.Catalog, s *student.Student, opts SuggestOptions) (required, optional []*curriculum.Course) {
	missing := cat.MissingRequirements(s)

	for _, c := range cat.Courses() {
		if !c.CanEnroll(s) || s.IsEnrolledIn(c) {
			continue
		}
		switch {
		case c.IsSpecial() && opts.IgnoreSpecials:
			continue
		case c.IsElective():
			if !opts.IgnoreElectives {
				optional = append(optional, c)
			}
			continue
		}

		if c.CoversAny(missing) {
			required = append(required, c)
		} else {
			optional = append(optional, c)
		}
	}
	return required, optional
}

// Score rates how much a course helps close the shortfall in missing.
// Courses covering larger shortfalls, and worth more, score higher.
func Score(missing map[string]float64, c *curriculum.Course) float64 {
	var shortfall float64
	for _, cat := range c.Categories() {
		shortfall += missing[cat]
	}
	return c.Worth() * shortfall
}

// RankRequired orders courses by descending Score. Equal scores keep id
// order and are then shuffled within their group with rng; a nil rng
// leaves ties in id order. The input is not modified.
func RankRequired(missing map[string]float64, courses []*curriculum.Course, rng *rand.Rand) []*curriculum.Course {
	type scored struct {
		course *curriculum.Course
		score  float64
	}
	ranked := make([]scored, len(courses))
	for i, c := range courses {
		ranked[i] = scored{c, Score(missing, c)}
	}
	slices.SortFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return a.course.ID() - b.course.ID()
	})

	out := make([]*curriculum.Course, len(ranked))
	for i, r := range ranked {
		out[i] = r.course
	}
	if rng == nil {
		return out
	}
	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && ranked[end].score == ranked[start].score {
			end++
		}
		group := out[start:end]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		start = end
	}
	return out
}

// AvailableElectives returns the electives the student may enroll in.
func AvailableElectives(cat *curriculum.Catalog, s *student.Student) []*curriculum.Course {
	var out []*curriculum.Course
	for _, c := range cat.Electives() {
		if c.CanEnroll(s) {
			out = append(out, c)
		}
	}
	return out
}
