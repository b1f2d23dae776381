// Package simulation drives a cohort of students through the curriculum
// one year at a time.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/enrollment"
	"github.com/p-n-ai/pai-cohort/internal/shared"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// seedStream is the second PCG word; runs differ only by Seed.
const seedStream = 0x5eed_c0de

// EngineConfig holds the inputs of a simulation engine.
type EngineConfig struct {
	Catalog *curriculum.Catalog // default catalog when nil
	Params  *enrollment.Params  // DefaultParams when nil
	Seed    uint64
	Events  EventLogger     // SlogEventLogger when nil
	OnYear  func(YearStats) // called after every simulated year
}

// Engine runs cohort simulations. Every Run starts from the same seed, so
// repeated runs of one engine give identical results.
type Engine struct {
	catalog *curriculum.Catalog
	params  enrollment.Params
	seed    uint64
	events  EventLogger
	onYear  func(YearStats)
}

// YearStats summarises one simulated year.
type YearStats struct {
	Year             int
	Active           int
	Enrolled         int
	Graduated        int
	DroppedOut       int
	PlacementCredits int
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Seed      uint64
	Years     int
	Params    enrollment.Params
	Active    []*student.Student
	Graduates []*student.Student
	Dropouts  []*student.Student
	Enrolled  int
	Stats     []YearStats
}

// GraduationRate returns graduates over students who left the school.
func (r *Result) GraduationRate() float64 {
	left := len(r.Graduates) + len(r.Dropouts)
	if left == 0 {
		return 0
	}
	return float64(len(r.Graduates)) / float64(left)
}

// NewEngine creates a simulation engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	cat := cfg.Catalog
	if cat == nil {
		var err error
		if cat, err = curriculum.Default(); err != nil {
			return nil, fmt.Errorf("loading default catalog: %w", err)
		}
	}
	params := enrollment.DefaultParams()
	if cfg.Params != nil {
		params = *cfg.Params
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	events := cfg.Events
	if events == nil {
		events = SlogEventLogger{}
	}
	return &Engine{
		catalog: cat,
		params:  params,
		seed:    cfg.Seed,
		events:  events,
		onYear:  cfg.OnYear,
	}, nil
}

// Catalog returns the catalog the engine simulates.
func (e *Engine) Catalog() *curriculum.Catalog { return e.catalog }

// Run simulates years years. New cohorts are enrolled at the end of each of
// the first enrollingYears years.
func (e *Engine) Run(ctx context.Context, years, enrollingYears int) (*Result, error) {
	if years < 0 || enrollingYears < 0 {
		return nil, shared.ValidationError("engine.Run", "years and enrollingYears must not be negative")
	}

	rng := rand.New(rand.NewPCG(e.seed, seedStream))
	sched, err := enrollment.NewScheduler(e.catalog, e.params, rng)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:  uuid.NewString(),
		Seed:   e.seed,
		Years:  years,
		Params: e.params,
	}
	roster := NewRoster()
	nextID := 1

	slog.Info("simulation started",
		"run_id", res.RunID,
		"seed", e.seed,
		"years", years,
		"enrolling_years", enrollingYears,
		"courses", e.catalog.Len(),
	)

	for year := 1; year <= years; year++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled in year %d: %w", year, err)
		}

		stats := YearStats{Year: year}
		sched.OnPlacement = func(s *student.Student, skipped, next *curriculum.Course) {
			stats.PlacementCredits++
			data := map[string]any{"skipped": skipped.Name()}
			if next != nil {
				data["next"] = next.Name()
			}
			e.logEvent(res.RunID, year, s.ID, EventPlacementCredit, data)
		}

		for _, s := range roster.Active() {
			outcome, err := sched.Advance(s)
			if err != nil {
				return nil, fmt.Errorf("year %d: %w", year, err)
			}

			switch outcome {
			case enrollment.Graduated:
				res.Graduates = append(res.Graduates, s)
				stats.Graduated++
				e.logEvent(res.RunID, year, s.ID, EventGraduated, map[string]any{
					"age":     s.Age,
					"credits": s.TotalCredits(),
				})
			case enrollment.DroppedOut:
				res.Dropouts = append(res.Dropouts, s)
				stats.DroppedOut++
				e.logEvent(res.RunID, year, s.ID, EventDroppedOut, map[string]any{
					"age":     s.Age,
					"credits": s.TotalCredits(),
				})
			default:
				continue
			}
			if err := roster.Remove(s.ID); err != nil {
				return nil, err
			}
		}

		if enrollingYears > 0 {
			for range e.cohortSize(rng) {
				s, err := sched.EnrollNewStudent(nextID)
				if err != nil {
					return nil, fmt.Errorf("year %d: enrolling student %d: %w", year, nextID, err)
				}
				nextID++
				if err := roster.Add(s); err != nil {
					return nil, err
				}
				res.Enrolled++
				stats.Enrolled++
				e.logEvent(res.RunID, year, s.ID, EventEnrolled, map[string]any{
					"age":     s.Age,
					"courses": len(s.Enrolled()),
				})
			}
			enrollingYears--
		}

		stats.Active = roster.Len()
		res.Stats = append(res.Stats, stats)
		slog.Info("year simulated",
			"run_id", res.RunID,
			"year", year,
			"active", stats.Active,
			"enrolled", stats.Enrolled,
			"graduated", stats.Graduated,
			"dropped_out", stats.DroppedOut,
		)
		if e.onYear != nil {
			e.onYear(stats)
		}
	}

	res.Active = roster.Active()
	slog.Info("simulation finished",
		"run_id", res.RunID,
		"enrolled", res.Enrolled,
		"graduates", len(res.Graduates),
		"dropouts", len(res.Dropouts),
		"active", len(res.Active),
	)
	return res, nil
}

// cohortSize draws enrollment +/- up to enrollmentMargin, never below zero.
func (e *Engine) cohortSize(rng *rand.Rand) int {
	delta := (rng.Float64()*2 - 1) * float64(e.params.EnrollmentMargin)
	return max(0, e.params.Enrollment+int(math.Round(delta)))
}

func (e *Engine) logEvent(runID string, year, studentID int, eventType string, data map[string]any) {
	if err := e.events.LogEvent(Event{
		RunID:     runID,
		Year:      year,
		StudentID: studentID,
		EventType: eventType,
		Data:      data,
	}); err != nil {
		slog.Warn("failed to log event", "type", eventType, "student_id", studentID, "error", err)
	}
}
