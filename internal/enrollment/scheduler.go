package enrollment

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/shared"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

const (
	freshmanGrade = curriculum.MinGradeLevel
	terminalGrade = curriculum.MaxGradeLevel
	freshmanAge   = 15
)

// Outcome is a student's classification at the end of a year.
type Outcome int

const (
	Continuing Outcome = iota
	Graduated
	DroppedOut
)

func (o Outcome) String() string {
	switch o {
	case Continuing:
		return "continuing"
	case Graduated:
		return "graduated"
	case DroppedOut:
		return "dropped_out"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// PlacementFunc is called when a freshman receives placement credit for
// skipped and is enrolled in next instead. next is nil when no follow-up
// course was available.
type PlacementFunc func(s *student.Student, skipped, next *curriculum.Course)

// Scheduler runs year advancement and freshman enrollment against one
// catalog with one random source. It is not safe for concurrent use.
type Scheduler struct {
	catalog *curriculum.Catalog
	params  Params
	rng     *rand.Rand

	mandatory *curriculum.Course
	optional  *curriculum.Course
	capstone  *curriculum.Course
	skippable map[int]bool

	// OnPlacement, if set, observes skip-ahead placements.
	OnPlacement PlacementFunc
}

// NewScheduler validates params and resolves the course names they refer
// to. Unknown names fail with NotFound.
func NewScheduler(cat *curriculum.Catalog, params Params, rng *rand.Rand) (*Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, shared.ValidationError("enrollment.NewScheduler", "random source is required")
	}
	if params.MandatorySpecial != "" && params.MandatorySpecial == params.OptionalSpecial {
		return nil, shared.ValidationError("enrollment.NewScheduler", "%q is both the mandatory and the optional special", params.MandatorySpecial)
	}

	sc := &Scheduler{
		catalog:   cat,
		params:    params,
		rng:       rng,
		skippable: make(map[int]bool),
	}

	var err error
	if sc.mandatory, err = optionalCourse(cat, params.MandatorySpecial); err != nil {
		return nil, fmt.Errorf("mandatory special: %w", err)
	}
	if sc.optional, err = optionalCourse(cat, params.OptionalSpecial); err != nil {
		return nil, fmt.Errorf("optional special: %w", err)
	}
	if sc.capstone, err = optionalCourse(cat, params.Capstone); err != nil {
		return nil, fmt.Errorf("capstone: %w", err)
	}
	for _, name := range params.Skippable {
		c, err := cat.CourseByName(name)
		if err != nil {
			return nil, fmt.Errorf("skippable: %w", err)
		}
		sc.skippable[c.ID()] = true
	}
	return sc, nil
}

func optionalCourse(cat *curriculum.Catalog, name string) (*curriculum.Course, error) {
	if name == "" {
		return nil, nil
	}
	return cat.CourseByName(name)
}

// Params returns the parameters the scheduler runs with.
func (sc *Scheduler) Params() Params { return sc.params }

// Advance moves a student through one year: resolve the current schedule,
// age a year, enroll for the coming year and classify.
func (sc *Scheduler) Advance(s *student.Student) (Outcome, error) {
	if err := sc.resolve(s); err != nil {
		return Continuing, err
	}

	s.Age++
	if s.Grade < terminalGrade {
		s.Grade++
	}

	s.BeginNewYear()
	if err := sc.enrollSpecials(s); err != nil {
		return Continuing, err
	}
	if s.Grade == terminalGrade && sc.capstone != nil && sc.capstone.CanEnroll(s) && !s.IsEnrolledIn(sc.capstone) {
		if err := s.Enroll(sc.capstone, false, false); err != nil {
			return Continuing, err
		}
	}

	electives := s.Grade >= sc.params.ElectiveGrade
	if err := sc.fill(s, fillOptions{
		electives:     electives,
		requiredLimit: sc.requiredLimit(s.Grade, electives),
	}); err != nil {
		return Continuing, err
	}

	return sc.classify(s), nil
}

// EnrollNewStudent creates a freshman and enrolls them for their first
// year. Skippable courses drawn with honors are credited directly and
// replaced by the course that follows them.
func (sc *Scheduler) EnrollNewStudent(id int) (*student.Student, error) {
	age := freshmanAge
	if sc.rng.Float64() < sc.params.LowAge {
		age--
	}
	first := firstNames[sc.rng.IntN(len(firstNames))]
	last := lastNames[sc.rng.IntN(len(lastNames))]

	s := student.New(id, first, last, age, freshmanGrade)
	s.BeginNewYear()
	if err := sc.enrollSpecials(s); err != nil {
		return nil, err
	}
	if err := sc.fill(s, fillOptions{
		electives:     true,
		requiredLimit: sc.params.MaxCourses,
		skipAhead:     true,
	}); err != nil {
		return nil, err
	}

	slog.Debug("student enrolled", "student_id", id, "age", age, "courses", len(s.Enrolled()))
	return s, nil
}

func (sc *Scheduler) resolve(s *student.Student) error {
	for _, c := range s.Enrolled() {
		var err error
		if s.IsEnrolledInHonors(c) {
			switch {
			case sc.rng.Float64() < sc.params.HonorsFailChance:
				err = s.Fail(c)
			case sc.rng.Float64() < sc.params.HonorsFallOut:
				s.Msg("fell out of honors in %s", c.Name())
				err = s.Pass(c, false, false)
			default:
				err = s.Pass(c, true, false)
			}
		} else if sc.rng.Float64() < sc.params.FailChance {
			err = s.Fail(c)
		} else {
			err = s.Pass(c, false, false)
		}
		if err != nil {
			return fmt.Errorf("resolving %s for student %d: %w", c.Name(), s.ID, err)
		}
	}
	return nil
}

func (sc *Scheduler) enrollSpecials(s *student.Student) error {
	if sc.mandatory != nil {
		if err := s.Enroll(sc.mandatory, false, true); err != nil {
			return err
		}
	}
	if sc.optional != nil && sc.rng.Float64() < sc.params.Band {
		if err := s.Enroll(sc.optional, false, true); err != nil {
			return err
		}
	}
	return nil
}

func (sc *Scheduler) requiredLimit(grade int, electives bool) int {
	if electives && grade < sc.params.PushGrade {
		return max(0, sc.params.MaxCourses-sc.params.Electives)
	}
	return sc.params.MaxCourses
}

type fillOptions struct {
	electives     bool
	requiredLimit int
	skipAhead     bool
}

// fill enrolls required courses up to opts.requiredLimit, then optional
// courses up to MaxCourses. Slots reserved for electives that stay empty go
// back to the remaining required courses. Specials do not count toward the
// load.
func (sc *Scheduler) fill(s *student.Student, opts fillOptions) error {
	honors := newHonorsChance(sc.params, s.HonorsCount(), sc.rng)
	required, optional := Suggest(sc.catalog, s, SuggestOptions{
		IgnoreElectives: !opts.electives,
		IgnoreSpecials:  true,
	})
	required = RankRequired(sc.catalog.MissingRequirements(s), required, sc.rng)

	load := courseLoad(s)
	for _, c := range required {
		if load >= opts.requiredLimit {
			break
		}
		// Placement credit can change eligibility mid-pass.
		if s.IsEnrolledIn(c) || !c.CanEnroll(s) {
			continue
		}

		if opts.skipAhead && sc.skippable[c.ID()] {
			placed, err := sc.placement(s, c, honors)
			if err != nil {
				return err
			}
			if placed {
				load = courseLoad(s)
				continue
			}
		}

		if err := s.Enroll(c, c.HasHonors() && honors.Draw(), false); err != nil {
			return err
		}
		load++
	}

	sc.rng.Shuffle(len(optional), func(i, j int) { optional[i], optional[j] = optional[j], optional[i] })
	for _, c := range optional {
		if load >= sc.params.MaxCourses {
			break
		}
		if s.IsEnrolledIn(c) || !c.CanEnroll(s) {
			continue
		}
		if err := s.Enroll(c, c.HasHonors() && honors.Draw(), false); err != nil {
			return err
		}
		load++
	}

	for _, c := range required {
		if load >= sc.params.MaxCourses {
			break
		}
		if s.IsEnrolledIn(c) || !c.CanEnroll(s) {
			continue
		}
		if err := s.Enroll(c, c.HasHonors() && honors.Draw(), false); err != nil {
			return err
		}
		load++
	}
	return nil
}

// placement draws honors for a skippable course. On success the course is
// credited without enrollment and the student enrolls in the next course
// that requires it, if one is open to them.
func (sc *Scheduler) placement(s *student.Student, skipped *curriculum.Course, honors *honorsChance) (bool, error) {
	if !honors.Draw() {
		return false, nil
	}
	if err := s.Pass(skipped, true, true); err != nil {
		return false, err
	}

	next := sc.nextInSequence(s, skipped)
	if next != nil {
		if err := s.Enroll(next, next.HasHonors() && honors.Draw(), false); err != nil {
			return false, err
		}
		s.Msg("placed out of %s into %s", skipped.Name(), next.Name())
	} else {
		s.Msg("placed out of %s", skipped.Name())
	}

	slog.Debug("placement credit",
		"student_id", s.ID,
		"skipped", skipped.Name(),
		"next", courseName(next),
		"honors_chance", honors.Chance(),
	)
	if sc.OnPlacement != nil {
		sc.OnPlacement(s, skipped, next)
	}
	return true, nil
}

// nextInSequence picks the course that follows c: same-track courses
// first, then anything else requiring c, in id order.
func (sc *Scheduler) nextInSequence(s *student.Student, c *curriculum.Course) *curriculum.Course {
	track, _ := c.Track()
	var fallback *curriculum.Course
	for _, next := range sc.catalog.CoursesRequiring(c) {
		if next.IsSpecial() || s.IsEnrolledIn(next) || !next.CanEnroll(s) {
			continue
		}
		if t, _ := next.Track(); track != "" && t == track {
			return next
		}
		if fallback == nil && !next.IsElective() {
			fallback = next
		}
	}
	return fallback
}

func (sc *Scheduler) classify(s *student.Student) Outcome {
	switch {
	case sc.catalog.CanGraduate(s):
		return Graduated
	case s.Age > sc.params.MaxAge:
		return DroppedOut
	case s.Age > sc.params.DropoutAge && sc.rng.Float64() < sc.params.DropoutChance:
		return DroppedOut
	}
	return Continuing
}

// courseLoad counts the non-special courses on the current schedule.
func courseLoad(s *student.Student) int {
	n := 0
	for _, c := range s.Enrolled() {
		if !c.IsSpecial() {
			n++
		}
	}
	return n
}

func courseName(c *curriculum.Course) string {
	if c == nil {
		return ""
	}
	return c.Name()
}

var (
	firstNames = []string{
		"Aiden", "Amara", "Ben", "Chloe", "Daniel", "Elena", "Farah", "Gabriel",
		"Hana", "Isaac", "Jia", "Kofi", "Lena", "Marcus", "Nadia", "Omar",
		"Priya", "Quinn", "Rosa", "Sam", "Tariq", "Uma", "Victor", "Wen",
	}
	lastNames = []string{
		"Abbott", "Brooks", "Chen", "Diaz", "Evans", "Fischer", "Garcia", "Hughes",
		"Ibrahim", "Johnson", "Kim", "Lopez", "Morgan", "Nguyen", "Okafor", "Patel",
		"Reyes", "Singh", "Tan", "Walsh", "Yusuf", "Zhang",
	}
)
