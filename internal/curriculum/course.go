package curriculum

import (
	"slices"
	"strconv"
)

// Enrollee is the view of a student a Course needs to decide eligibility.
type Enrollee interface {
	CurrentGrade() int
	HasPassed(c *Course) bool
	HasTaken(c *Course) bool
}

// CreditReceiver accepts credits conferred by a passed course.
type CreditReceiver interface {
	GiveCredits(categories []string, amount float64)
}

// Course describes one course of a catalog. Courses are created by a
// Builder and never change afterwards.
type Course struct {
	id          int
	name        string
	minGrade    int
	hasHonors   bool
	honorsTitle string
	worth       float64
	categories  []string
	prereqs     []*Course
	elective    bool
	special     bool
	track       string
	level       int
}

// ID returns the course id, equal to its position in the catalog.
func (c *Course) ID() int { return c.id }

// Name returns the course name.
func (c *Course) Name() string { return c.name }

// MinGrade returns the lowest grade level allowed to enroll.
func (c *Course) MinGrade() int { return c.minGrade }

// HasHonors reports whether the course can be taken with honors.
func (c *Course) HasHonors() bool { return c.hasHonors }

// HonorsTitle returns the display name of the honors section.
func (c *Course) HonorsTitle() string { return c.honorsTitle }

// Worth returns the credit conferred per pass.
func (c *Course) Worth() float64 { return c.worth }

// Categories returns the credit categories the course counts toward.
func (c *Course) Categories() []string { return slices.Clone(c.categories) }

// Prerequisites returns the courses that must be attempted first.
func (c *Course) Prerequisites() []*Course { return slices.Clone(c.prereqs) }

// IsElective reports whether the course is an elective.
func (c *Course) IsElective() bool { return c.elective }

// IsSpecial reports whether the course is a fixed yearly commitment.
func (c *Course) IsSpecial() bool { return c.special }

// Track returns the track name and level, or "" when the course is not
// part of a track.
func (c *Course) Track() (string, int) { return c.track, c.level }

// CanEnroll reports whether the student may enroll in the course.
// Prerequisites need an attempt, not a pass.
func (c *Course) CanEnroll(e Enrollee) bool {
	if e.CurrentGrade() < c.minGrade {
		return false
	}
	if e.HasPassed(c) {
		return false
	}
	for _, p := range c.prereqs {
		if !e.HasTaken(p) {
			return false
		}
	}
	return true
}

// Confer grants the course's worth in each of its categories.
func (c *Course) Confer(r CreditReceiver) {
	r.GiveCredits(c.categories, c.worth)
}

// HasPrerequisite reports whether other is a direct prerequisite.
func (c *Course) HasPrerequisite(other *Course) bool {
	return slices.Contains(c.prereqs, other)
}

// CoversAny reports whether the course counts toward any of the categories.
func (c *Course) CoversAny(categories map[string]float64) bool {
	for _, cat := range c.categories {
		if _, ok := categories[cat]; ok {
			return true
		}
	}
	return false
}

func (c *Course) String() string {
	worth := strconv.FormatFloat(c.worth, 'f', -1, 64)
	if c.worth == 1 {
		return c.name + " (" + worth + " credit)"
	}
	return c.name + " (" + worth + " credits)"
}
