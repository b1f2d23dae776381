package curriculum

import (
	"maps"
	"slices"

	"github.com/p-n-ai/pai-cohort/internal/shared"
)

// TotalCreditsKey labels the total-credit requirement in reports. It is
// reserved and cannot name a credit category.
const TotalCreditsKey = "Total Credits"

// CreditHolder is the view of a student the catalog needs to check
// graduation requirements.
type CreditHolder interface {
	Credit(category string) float64
	TotalCredits() float64
}

// Catalog is the registrar: every course, the tracks they belong to and
// the graduation requirements. A Catalog is read-only once built.
type Catalog struct {
	courses      []*Course
	electives    []*Course
	specials     []*Course
	tracks       map[string]map[int][]*Course
	trackOrder   []string
	credits      map[string]struct{}
	requirements map[string]float64
	totalReq     float64
}

// Courses returns every course in id order.
func (c *Catalog) Courses() []*Course { return slices.Clone(c.courses) }

// Electives returns the elective courses.
func (c *Catalog) Electives() []*Course { return slices.Clone(c.electives) }

// Specials returns the special courses.
func (c *Catalog) Specials() []*Course { return slices.Clone(c.specials) }

// Len returns the number of courses.
func (c *Catalog) Len() int { return len(c.courses) }

// CourseByName returns the first course with the given name.
func (c *Catalog) CourseByName(name string) (*Course, error) {
	for _, course := range c.courses {
		if course.name == name {
			return course, nil
		}
	}
	return nil, shared.NotFound("catalog.CourseByName", "no course named %q", name)
}

// CourseByID returns the course with the given id. It tries the position
// first and falls back to a scan when ids and positions disagree.
func (c *Catalog) CourseByID(id int) (*Course, error) {
	if id >= 0 && id < len(c.courses) && c.courses[id].id == id {
		return c.courses[id], nil
	}
	for _, course := range c.courses {
		if course.id == id {
			return course, nil
		}
	}
	return nil, shared.NotFound("catalog.CourseByID", "no course with id %d", id)
}

// CoursesRequiring returns the courses that list req as a prerequisite.
func (c *Catalog) CoursesRequiring(req *Course) []*Course {
	var out []*Course
	for _, course := range c.courses {
		if course.HasPrerequisite(req) {
			out = append(out, course)
		}
	}
	return out
}

// Tracks returns the track names in declaration order.
func (c *Catalog) Tracks() []string { return slices.Clone(c.trackOrder) }

// TrackLevels returns the levels of a track in ascending order.
func (c *Catalog) TrackLevels(track string) []int {
	return slices.Sorted(maps.Keys(c.tracks[track]))
}

// TrackLevel returns the courses at one level of a track.
func (c *Catalog) TrackLevel(track string, level int) []*Course {
	return slices.Clone(c.tracks[track][level])
}

// CreditCategories returns every known credit category, sorted.
func (c *Catalog) CreditCategories() []string {
	return slices.Sorted(maps.Keys(c.credits))
}

// GraduationRequirements returns a copy of the per-category requirements.
func (c *Catalog) GraduationRequirements() map[string]float64 {
	return maps.Clone(c.requirements)
}

// TotalRequirement returns the recorded total-credit figure (0 = none). It
// is informational: graduation depends on the category requirements only.
func (c *Catalog) TotalRequirement() float64 { return c.totalReq }

// TotalShortfall returns how many credits h lacks against the recorded
// total, or 0 when the total is met or unset.
func (c *Catalog) TotalShortfall(h CreditHolder) float64 {
	return max(0, c.totalReq-h.TotalCredits())
}

// CanGraduate reports whether every category requirement is met.
func (c *Catalog) CanGraduate(h CreditHolder) bool {
	for category, amount := range c.requirements {
		if h.Credit(category) < amount {
			return false
		}
	}
	return true
}

// MissingRequirements returns the shortfall for every unmet category
// requirement. Categories already met are omitted.
func (c *Catalog) MissingRequirements(h CreditHolder) map[string]float64 {
	missing := make(map[string]float64)
	for category, amount := range c.requirements {
		if has := h.Credit(category); has < amount {
			missing[category] = amount - has
		}
	}
	return missing
}
