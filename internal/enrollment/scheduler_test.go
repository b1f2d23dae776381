package enrollment_test

import (
	"errors"
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/enrollment"
	"github.com/p-n-ai/pai-cohort/internal/shared"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// quietParams disables specials, placement and randomness in outcomes.
func quietParams() enrollment.Params {
	p := enrollment.DefaultParams()
	p.FailChance = 0
	p.HonorsFailChance = 0
	p.HonorsFallOut = 0
	p.DropoutChance = 0
	p.Skippable = nil
	p.MandatorySpecial = ""
	p.OptionalSpecial = ""
	p.Capstone = ""
	return p
}

func newScheduler(t *testing.T, cat *curriculum.Catalog, p enrollment.Params) *enrollment.Scheduler {
	t.Helper()
	sc, err := enrollment.NewScheduler(cat, p, rand.New(rand.NewPCG(42, 1)))
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	return sc
}

func TestScheduler_LinearTrack(t *testing.T) {
	b := curriculum.NewBuilder()
	b.TrackMaker("X", "X", curriculum.TrackOptions{}, "A", "B", "C")
	b.RecordGraduationRequirements(map[string]float64{"X": 3})
	cat, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	sc := newScheduler(t, cat, quietParams())

	s, err := sc.EnrollNewStudent(1)
	if err != nil {
		t.Fatalf("EnrollNewStudent() error = %v", err)
	}

	steps := []struct {
		enrolled    string
		wantMissing map[string]float64
		wantOutcome enrollment.Outcome
	}{
		{"A", map[string]float64{"X": 2}, enrollment.Continuing},
		{"B", map[string]float64{"X": 1}, enrollment.Continuing},
		{"C", map[string]float64{}, enrollment.Graduated},
	}

	for i, step := range steps {
		if got := names(s.Enrolled()); len(got) != 1 || got[0] != step.enrolled {
			t.Fatalf("year %d: Enrolled() = %v, want [%s]", i, got, step.enrolled)
		}
		if cat.CanGraduate(s) {
			t.Fatalf("year %d: CanGraduate() = true before %s was passed", i, step.enrolled)
		}

		outcome, err := sc.Advance(s)
		if err != nil {
			t.Fatalf("year %d: Advance() error = %v", i, err)
		}
		if outcome != step.wantOutcome {
			t.Errorf("year %d: Advance() = %v, want %v", i, outcome, step.wantOutcome)
		}
		if got := cat.MissingRequirements(s); !maps.Equal(got, step.wantMissing) {
			t.Errorf("year %d: MissingRequirements() = %v, want %v", i, got, step.wantMissing)
		}
	}
	if s.Grade != 12 || s.Years() != 4 {
		t.Errorf("Grade, Years = %d, %d, want 12, 4", s.Grade, s.Years())
	}
}

func TestScheduler_MaxCoursesOne(t *testing.T) {
	tests := []struct {
		name         string
		electives    int
		withOptional bool
		failChance   float64
	}{
		{"no reserved slots", 0, true, 0.3},
		{"reserved slot without optional courses", 1, false, 0},
		{"default reserved slots without optional courses", 2, false, 0},
		{"reserved slots with optional courses", 2, true, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := curriculum.NewBuilder()
			b.TrackMaker("English", "English", curriculum.TrackOptions{}, "E1", "E2", "E3", "E4")
			b.TrackMaker("Science", "Science", curriculum.TrackOptions{}, "S1", "S2", "S3", "S4")
			if tt.withOptional {
				b.NewElective("Drawing").Credit(1, "Art")
				b.NewCourse("Cooking").Credit(1, "Home")
			}
			b.RecordGraduationRequirements(map[string]float64{"English": 4, "Science": 4})
			cat, err := b.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			p := quietParams()
			p.MaxCourses = 1
			p.Electives = tt.electives
			p.FailChance = tt.failChance
			sc := newScheduler(t, cat, p)

			for id := range 10 {
				s, err := sc.EnrollNewStudent(id)
				if err != nil {
					t.Fatalf("EnrollNewStudent() error = %v", err)
				}
				for year := 0; year <= 10; year++ {
					if got := len(s.Enrolled()); got != 1 {
						t.Fatalf("student %d year %d (grade %d): Enrolled() = %v, want exactly one course",
							id, year, s.Grade, names(s.Enrolled()))
					}
					c := s.Enrolled()[0]
					if tt.electives == 0 && (c.Name() == "Drawing" || c.Name() == "Cooking") {
						t.Fatalf("student %d year %d: enrolled in optional %s while requirements are open", id, year, c.Name())
					}
					if tt.failChance == 0 && len(s.Passed()) != year {
						t.Fatalf("student %d year %d: Passed() = %v, want %d courses", id, year, names(s.Passed()), year)
					}
					outcome, err := sc.Advance(s)
					if err != nil {
						t.Fatalf("Advance() error = %v", err)
					}
					if outcome != enrollment.Continuing {
						break
					}
				}
			}
		})
	}
}

func TestScheduler_NoDropoutBelowMaxAge(t *testing.T) {
	cat, err := curriculum.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	for _, failChance := range []float64{0, 0.5, 1} {
		p := enrollment.DefaultParams()
		p.DropoutChance = 0
		p.MaxAge = 20
		p.FailChance = failChance
		p.HonorsFailChance = failChance
		sc := newScheduler(t, cat, p)

		for id := range 20 {
			s, err := sc.EnrollNewStudent(id)
			if err != nil {
				t.Fatalf("EnrollNewStudent() error = %v", err)
			}
			for range 12 {
				outcome, err := sc.Advance(s)
				if err != nil {
					t.Fatalf("Advance() error = %v", err)
				}
				if outcome == enrollment.DroppedOut && s.Age < 21 {
					t.Fatalf("failChance %v: student dropped out at age %d", failChance, s.Age)
				}
				if outcome != enrollment.Continuing {
					break
				}
			}
		}
	}
}

func TestScheduler_FailingEverythingHitsMaxAge(t *testing.T) {
	cat, err := curriculum.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	p := enrollment.DefaultParams()
	p.FailChance = 1
	p.HonorsFailChance = 1
	p.DropoutChance = 0
	p.Skippable = nil
	sc := newScheduler(t, cat, p)

	s, err := sc.EnrollNewStudent(1)
	if err != nil {
		t.Fatalf("EnrollNewStudent() error = %v", err)
	}
	startAge := s.Age
	for year := 1; year <= 10; year++ {
		outcome, err := sc.Advance(s)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		if outcome == enrollment.Graduated {
			t.Fatal("student graduated without passing anything")
		}
		if outcome == enrollment.DroppedOut {
			if s.Age != 21 {
				t.Errorf("dropped out at age %d, want 21", s.Age)
			}
			if year != 21-startAge {
				t.Errorf("dropped out after %d years, want %d", year, 21-startAge)
			}
			return
		}
		if len(s.Passed()) != 0 {
			t.Fatalf("Passed() = %v, want none", names(s.Passed()))
		}
	}
	t.Fatal("student never dropped out")
}

func TestScheduler_Specials(t *testing.T) {
	b := curriculum.NewBuilder()
	b.NewCourse("English").Credit(1, "English")
	b.NewSpecial("PE")
	b.NewSpecial("Band")
	b.NewCourse("College Success").MinGrade(12).Credit(1, "Life")
	b.RecordGraduationRequirements(map[string]float64{"English": 10})
	cat, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	p := quietParams()
	p.MandatorySpecial = "PE"
	p.OptionalSpecial = "Band"
	p.Band = 1
	p.Capstone = "College Success"
	p.ElectiveGrade = 13
	sc := newScheduler(t, cat, p)

	s, err := sc.EnrollNewStudent(1)
	if err != nil {
		t.Fatalf("EnrollNewStudent() error = %v", err)
	}
	pe := mustCourse(t, cat, "PE")
	band := mustCourse(t, cat, "Band")
	capstone := mustCourse(t, cat, "College Success")

	for year := 0; year < 4; year++ {
		if !s.IsEnrolledIn(pe) || !s.IsEnrolledIn(band) {
			t.Errorf("grade %d: PE/Band enrolled = %v/%v, want both", s.Grade, s.IsEnrolledIn(pe), s.IsEnrolledIn(band))
		}
		if got := s.IsEnrolledIn(capstone); got != (s.Grade == 12) {
			t.Errorf("grade %d: capstone enrolled = %v", s.Grade, got)
		}
		if _, err := sc.Advance(s); err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
	}
}

func TestScheduler_SkipAhead(t *testing.T) {
	b := curriculum.NewBuilder()
	b.TrackMaker("Math", "Math", curriculum.TrackOptions{AllHonors: true}, "Algebra I", "Geometry", "Algebra II")
	b.RecordGraduationRequirements(map[string]float64{"Math": 3})
	cat, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	alg := mustCourse(t, cat, "Algebra I")
	geo := mustCourse(t, cat, "Geometry")

	t.Run("honors draw places ahead", func(t *testing.T) {
		p := quietParams()
		p.Honors = 1
		p.Skippable = []string{"Algebra I"}
		sc := newScheduler(t, cat, p)

		var placed []string
		sc.OnPlacement = func(s *student.Student, skipped, next *curriculum.Course) {
			placed = append(placed, skipped.Name()+"->"+next.Name())
		}

		s, err := sc.EnrollNewStudent(1)
		if err != nil {
			t.Fatalf("EnrollNewStudent() error = %v", err)
		}
		if !s.HasPassed(alg) || s.IsEnrolledIn(alg) {
			t.Errorf("Algebra I passed/enrolled = %v/%v, want true/false", s.HasPassed(alg), s.IsEnrolledIn(alg))
		}
		if !s.IsEnrolledInHonors(geo) {
			t.Error("Geometry should be scheduled with honors")
		}
		if s.Credit("Math") != 1 {
			t.Errorf("Credit(Math) = %v, want 1", s.Credit("Math"))
		}
		if len(placed) != 1 || placed[0] != "Algebra I->Geometry" {
			t.Errorf("placements = %v, want [Algebra I->Geometry]", placed)
		}
		if len(s.Info()) == 0 {
			t.Error("Info() should record the placement")
		}
	})

	t.Run("no honors enrolls normally", func(t *testing.T) {
		p := quietParams()
		p.Honors = 0
		p.Skippable = []string{"Algebra I"}
		sc := newScheduler(t, cat, p)

		s, err := sc.EnrollNewStudent(1)
		if err != nil {
			t.Fatalf("EnrollNewStudent() error = %v", err)
		}
		if !s.IsEnrolledIn(alg) || s.HasPassed(alg) {
			t.Errorf("Algebra I enrolled/passed = %v/%v, want true/false", s.IsEnrolledIn(alg), s.HasPassed(alg))
		}
		if s.IsEnrolledIn(geo) {
			t.Error("Geometry should not be scheduled")
		}
	})
}

func TestScheduler_HonorsCarryThrough(t *testing.T) {
	b := curriculum.NewBuilder()
	b.TrackMaker("Math", "Math", curriculum.TrackOptions{AllHonors: true}, "Algebra I", "Geometry")
	b.RecordGraduationRequirements(map[string]float64{"Math": 2})
	cat, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p := quietParams()
	p.Honors = 1
	sc := newScheduler(t, cat, p)

	s, err := sc.EnrollNewStudent(1)
	if err != nil {
		t.Fatalf("EnrollNewStudent() error = %v", err)
	}
	if _, err := sc.Advance(s); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	alg := mustCourse(t, cat, "Algebra I")
	geo := mustCourse(t, cat, "Geometry")
	if !s.HasPassed(alg) || !slices.Contains(s.Honors(), alg) {
		t.Errorf("Algebra I passed = %v, Honors() = %v, want passed with honors", s.HasPassed(alg), names(s.Honors()))
	}
	if !s.IsEnrolledInHonors(geo) {
		t.Error("Geometry should continue in honors")
	}
}

func TestNewScheduler_Errors(t *testing.T) {
	cat, err := curriculum.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(p *enrollment.Params)
		want   error
	}{
		{"unknown special", func(p *enrollment.Params) { p.MandatorySpecial = "Fencing" }, shared.ErrNotFound},
		{"unknown skippable", func(p *enrollment.Params) { p.Skippable = []string{"Algebra Zero"} }, shared.ErrNotFound},
		{"unknown capstone", func(p *enrollment.Params) { p.Capstone = "Thesis" }, shared.ErrNotFound},
		{"bad probability", func(p *enrollment.Params) { p.FailChance = 2 }, shared.ErrValidation},
		{"same special twice", func(p *enrollment.Params) { p.OptionalSpecial = p.MandatorySpecial }, shared.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := enrollment.DefaultParams()
			tt.modify(&p)
			_, err := enrollment.NewScheduler(cat, p, rand.New(rand.NewPCG(1, 1)))
			if !errors.Is(err, tt.want) {
				t.Errorf("NewScheduler() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := enrollment.NewScheduler(cat, enrollment.DefaultParams(), nil); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("NewScheduler(nil rng) error = %v, want ErrValidation", err)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		o    enrollment.Outcome
		want string
	}{
		{enrollment.Continuing, "continuing"},
		{enrollment.Graduated, "graduated"},
		{enrollment.DroppedOut, "dropped_out"},
		{enrollment.Outcome(9), "Outcome(9)"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
