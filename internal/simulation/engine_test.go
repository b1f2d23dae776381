package simulation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-cohort/internal/enrollment"
	"github.com/p-n-ai/pai-cohort/internal/shared"
	"github.com/p-n-ai/pai-cohort/internal/simulation"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

func smallParams() *enrollment.Params {
	p := enrollment.DefaultParams()
	p.Enrollment = 20
	p.EnrollmentMargin = 3
	return &p
}

func newEngine(t *testing.T, cfg simulation.EngineConfig) *simulation.Engine {
	t.Helper()
	engine, err := simulation.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestEngine_Run(t *testing.T) {
	events := simulation.NewMemoryEventLogger()
	var years []simulation.YearStats
	engine := newEngine(t, simulation.EngineConfig{
		Params: smallParams(),
		Seed:   1,
		Events: events,
		OnYear: func(s simulation.YearStats) { years = append(years, s) },
	})

	res, err := engine.Run(context.Background(), 10, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if got := len(res.Active) + len(res.Graduates) + len(res.Dropouts); got != res.Enrolled {
		t.Errorf("active+graduates+dropouts = %d, want Enrolled = %d", got, res.Enrolled)
	}
	if res.Enrolled < 3*17 || res.Enrolled > 3*23 {
		t.Errorf("Enrolled = %d, want within [51, 69]", res.Enrolled)
	}
	if len(res.Graduates) == 0 {
		t.Error("no student graduated in 10 years")
	}
	// The last cohort is past maxAge by year 10.
	if len(res.Active) != 0 {
		t.Errorf("len(Active) = %d, want 0", len(res.Active))
	}

	if len(years) != 10 || len(res.Stats) != 10 {
		t.Fatalf("OnYear calls, Stats = %d, %d, want 10, 10", len(years), len(res.Stats))
	}
	enrolled, graduated, dropped := 0, 0, 0
	for i, st := range res.Stats {
		if st.Year != i+1 {
			t.Errorf("Stats[%d].Year = %d, want %d", i, st.Year, i+1)
		}
		if i >= 3 && st.Enrolled != 0 {
			t.Errorf("Stats[%d].Enrolled = %d, want 0 after enrolling years", i, st.Enrolled)
		}
		enrolled += st.Enrolled
		graduated += st.Graduated
		dropped += st.DroppedOut
	}
	if enrolled != res.Enrolled || graduated != len(res.Graduates) || dropped != len(res.Dropouts) {
		t.Errorf("Stats totals = %d/%d/%d, want %d/%d/%d",
			enrolled, graduated, dropped, res.Enrolled, len(res.Graduates), len(res.Dropouts))
	}

	if got := events.Count(simulation.EventEnrolled); got != res.Enrolled {
		t.Errorf("enrolled events = %d, want %d", got, res.Enrolled)
	}
	if got := events.Count(simulation.EventGraduated); got != len(res.Graduates) {
		t.Errorf("graduated events = %d, want %d", got, len(res.Graduates))
	}
	if got := events.Count(simulation.EventDroppedOut); got != len(res.Dropouts) {
		t.Errorf("dropped_out events = %d, want %d", got, len(res.Dropouts))
	}

	for _, s := range res.Graduates {
		if !engine.Catalog().CanGraduate(s) {
			t.Errorf("graduate %d cannot graduate: missing %v", s.ID, engine.Catalog().MissingRequirements(s))
		}
		assertDisjoint(t, s)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	run := func(seed uint64) *simulation.Result {
		engine := newEngine(t, simulation.EngineConfig{Params: smallParams(), Seed: seed})
		res, err := engine.Run(context.Background(), 6, 2)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return res
	}

	a, b := run(99), run(99)
	if len(a.Graduates) != len(b.Graduates) || len(a.Dropouts) != len(b.Dropouts) || a.Enrolled != b.Enrolled {
		t.Fatalf("runs differ: %d/%d/%d vs %d/%d/%d",
			a.Enrolled, len(a.Graduates), len(a.Dropouts), b.Enrolled, len(b.Graduates), len(b.Dropouts))
	}
	if totalCredits(a) != totalCredits(b) {
		t.Errorf("total credits differ: %v vs %v", totalCredits(a), totalCredits(b))
	}
	for i := range a.Graduates {
		if a.Graduates[i].ID != b.Graduates[i].ID || a.Graduates[i].Name() != b.Graduates[i].Name() {
			t.Fatalf("graduate %d differs: %d %s vs %d %s", i,
				a.Graduates[i].ID, a.Graduates[i].Name(), b.Graduates[i].ID, b.Graduates[i].Name())
		}
	}
	if a.RunID == b.RunID {
		t.Error("RunID should be unique per run")
	}
}

func TestEngine_RunTwiceSameEngine(t *testing.T) {
	engine := newEngine(t, simulation.EngineConfig{Params: smallParams(), Seed: 5})
	a, err := engine.Run(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	b, err := engine.Run(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if totalCredits(a) != totalCredits(b) || a.Enrolled != b.Enrolled {
		t.Errorf("repeated Run() differs: %v/%d vs %v/%d", totalCredits(a), a.Enrolled, totalCredits(b), b.Enrolled)
	}
}

func TestEngine_NoEnrollingYears(t *testing.T) {
	engine := newEngine(t, simulation.EngineConfig{Params: smallParams()})
	res, err := engine.Run(context.Background(), 4, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Enrolled != 0 || len(res.Active) != 0 || len(res.Stats) != 4 {
		t.Errorf("Enrolled, Active, Stats = %d, %d, %d, want 0, 0, 4", res.Enrolled, len(res.Active), len(res.Stats))
	}
	if res.GraduationRate() != 0 {
		t.Errorf("GraduationRate() = %v, want 0", res.GraduationRate())
	}
}

func TestEngine_ZeroCohort(t *testing.T) {
	p := enrollment.DefaultParams()
	p.Enrollment = 0
	p.EnrollmentMargin = 0
	engine := newEngine(t, simulation.EngineConfig{Params: &p})
	res, err := engine.Run(context.Background(), 3, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Enrolled != 0 {
		t.Errorf("Enrolled = %d, want 0", res.Enrolled)
	}
}

func TestEngine_PlacementEvents(t *testing.T) {
	p := enrollment.DefaultParams()
	p.Enrollment = 30
	p.EnrollmentMargin = 0
	p.Honors = 1
	events := simulation.NewMemoryEventLogger()
	engine := newEngine(t, simulation.EngineConfig{Params: &p, Events: events})

	res, err := engine.Run(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Every freshman places out of both skippable courses.
	want := 2 * res.Enrolled
	if got := events.Count(simulation.EventPlacementCredit); got != want {
		t.Errorf("placement events = %d, want %d", got, want)
	}
	if res.Stats[0].PlacementCredits != want {
		t.Errorf("Stats[0].PlacementCredits = %d, want %d", res.Stats[0].PlacementCredits, want)
	}
}

func TestEngine_Cancelled(t *testing.T) {
	engine := newEngine(t, simulation.EngineConfig{Params: smallParams()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Run(ctx, 3, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestEngine_InvalidInput(t *testing.T) {
	p := enrollment.DefaultParams()
	p.FailChance = -1
	if _, err := simulation.NewEngine(simulation.EngineConfig{Params: &p}); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("NewEngine() error = %v, want ErrValidation", err)
	}

	engine := newEngine(t, simulation.EngineConfig{})
	if _, err := engine.Run(context.Background(), -1, 0); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("Run(-1) error = %v, want ErrValidation", err)
	}

	p = enrollment.DefaultParams()
	p.Capstone = "Thesis"
	engine = newEngine(t, simulation.EngineConfig{Params: &p})
	if _, err := engine.Run(context.Background(), 1, 1); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("Run() error = %v, want ErrNotFound", err)
	}
}

func totalCredits(r *simulation.Result) float64 {
	var sum float64
	for _, group := range [][]*student.Student{r.Active, r.Graduates, r.Dropouts} {
		for _, s := range group {
			sum += s.TotalCredits()
		}
	}
	return sum
}

func assertDisjoint(t *testing.T, s *student.Student) {
	t.Helper()
	for _, c := range s.Passed() {
		if s.HasFailed(c) {
			t.Errorf("student %d: course %s is both passed and failed", s.ID, c.Name())
		}
	}
}
