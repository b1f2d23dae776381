package simulation

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/p-n-ai/pai-cohort/internal/shared"
)

// Event types emitted during a run.
const (
	EventEnrolled        = "enrolled"
	EventGraduated       = "graduated"
	EventDroppedOut      = "dropped_out"
	EventPlacementCredit = "placement_credit"
)

var eventTypes = []string{EventEnrolled, EventGraduated, EventDroppedOut, EventPlacementCredit}

// Event is one notable change in a student's status.
type Event struct {
	RunID     string
	Year      int
	StudentID int
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// Validate checks that the event names a run, a simulated year, a student
// and one of the known event types.
func (e Event) Validate() error {
	const op = "simulation.Event"
	switch {
	case !slices.Contains(eventTypes, e.EventType):
		return shared.ValidationError(op, "unknown event type %q", e.EventType)
	case e.RunID == "":
		return shared.ValidationError(op, "%s event without a run id", e.EventType)
	case e.Year < 1:
		return shared.ValidationError(op, "%s event in year %d", e.EventType, e.Year)
	case e.StudentID < 1:
		return shared.ValidationError(op, "%s event for student %d", e.EventType, e.StudentID)
	}
	return nil
}

// EventLogger receives student events as a run progresses.
type EventLogger interface {
	LogEvent(event Event) error
}

// SlogEventLogger writes events to slog at debug level. It is the engine's
// default logger.
type SlogEventLogger struct {
	Logger *slog.Logger // slog.Default() when nil
}

func (l SlogEventLogger) LogEvent(event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("student event",
		"run_id", event.RunID,
		"year", event.Year,
		"student_id", event.StudentID,
		"type", event.EventType,
	)
	return nil
}

// MemoryEventLogger keeps a run's events in memory, indexed by type.
type MemoryEventLogger struct {
	mu       sync.Mutex
	events   []Event
	byType   map[string][]int
	lastYear map[string]int // per run id
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		byType:   make(map[string][]int),
		lastYear: make(map[string]int),
	}
}

// LogEvent validates and stores event. Events are stored in arrival order;
// within one run, years must not go backwards.
func (l *MemoryEventLogger) LogEvent(event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if last := l.lastYear[event.RunID]; last > event.Year {
		return shared.ValidationError("simulation.MemoryEventLogger",
			"run %s: %s event for year %d after year %d", event.RunID, event.EventType, event.Year, last)
	}
	l.lastYear[event.RunID] = event.Year
	l.byType[event.EventType] = append(l.byType[event.EventType], len(l.events))
	l.events = append(l.events, event)
	return nil
}

// Events returns every stored event in arrival order.
func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

// ByType returns the stored events of one type in arrival order.
func (l *MemoryEventLogger) ByType(eventType string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.byType[eventType]
	out := make([]Event, len(idx))
	for i, j := range idx {
		out[i] = l.events[j]
	}
	return out
}

// Count returns how many events of the given type were logged.
func (l *MemoryEventLogger) Count(eventType string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byType[eventType])
}
