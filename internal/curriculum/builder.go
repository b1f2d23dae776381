package curriculum

import (
	"errors"
	"fmt"
	"slices"

	"github.com/p-n-ai/pai-cohort/internal/shared"
)

const (
	// MinGradeLevel is the first high-school grade.
	MinGradeLevel = 9
	// MaxGradeLevel is the terminal grade.
	MaxGradeLevel = 12
)

type courseKind int

const (
	kindGeneric courseKind = iota
	kindElective
	kindSpecial
)

// Builder collects course declarations and resolves them into a Catalog.
// Declarations refer to each other by name; names are resolved in Build.
type Builder struct {
	decls        []*CourseBuilder
	trackOrder   []string
	credits      map[string]struct{}
	requirements map[string]float64
	totalReq     float64
	errs         []error
}

// CourseBuilder configures one declared course. Every method returns the
// same handle so calls can be chained.
type CourseBuilder struct {
	b           *Builder
	name        string
	kind        courseKind
	minGrade    int
	hasHonors   bool
	honorsTitle string
	worth       float64
	categories  []string
	reqs        []string
	track       string
	level       int
}

// TrackOptions controls TrackMaker.
type TrackOptions struct {
	AllHonors bool // every course in the track offers honors
	NoCredit  bool // courses confer no credit
}

// NewBuilder returns an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{
		credits:      make(map[string]struct{}),
		requirements: make(map[string]float64),
	}
}

// NewCourse declares a generic (requirement-driven) course.
func (b *Builder) NewCourse(name string) *CourseBuilder {
	return b.declare(name, kindGeneric)
}

// NewElective declares an elective course.
func (b *Builder) NewElective(name string) *CourseBuilder {
	return b.declare(name, kindElective)
}

// NewSpecial declares a special course (PE, Band, ...).
func (b *Builder) NewSpecial(name string) *CourseBuilder {
	return b.declare(name, kindSpecial)
}

func (b *Builder) declare(name string, kind courseKind) *CourseBuilder {
	cb := &CourseBuilder{
		b:        b,
		name:     name,
		kind:     kind,
		minGrade: MinGradeLevel,
		level:    -1,
	}
	b.decls = append(b.decls, cb)
	return cb
}

// TrackMaker declares a linear track: course i sits at level i and
// requires course i-1. Unless opts.NoCredit is set each course is worth one
// credit in the given category.
func (b *Builder) TrackMaker(track, credit string, opts TrackOptions, names ...string) []*CourseBuilder {
	out := make([]*CourseBuilder, 0, len(names))
	for i, name := range names {
		cb := b.NewCourse(name).Track(track, i)
		if !opts.NoCredit {
			cb.Credit(1, credit)
		}
		if opts.AllHonors {
			cb.Honors("")
		}
		if i > 0 {
			cb.Req(names[i-1])
		}
		out = append(out, cb)
	}
	return out
}

// RecordCredits registers credit category names.
func (b *Builder) RecordCredits(categories ...string) *Builder {
	for _, c := range categories {
		b.credits[c] = struct{}{}
	}
	return b
}

// RecordGraduationRequirements sets the amount needed per category.
func (b *Builder) RecordGraduationRequirements(reqs map[string]float64) *Builder {
	for category, amount := range reqs {
		if amount < 0 {
			b.errs = append(b.errs, shared.ValidationError("catalog.RecordGraduationRequirements",
				"negative requirement %v for %q", amount, category))
			continue
		}
		b.requirements[category] = amount
	}
	return b
}

// RecordTotalRequirement records the school's total-credit figure. It is
// reported but does not gate graduation.
func (b *Builder) RecordTotalRequirement(amount float64) *Builder {
	if amount < 0 {
		b.errs = append(b.errs, shared.ValidationError("catalog.RecordTotalRequirement",
			"negative total requirement %v", amount))
		return b
	}
	b.totalReq = amount
	return b
}

// MinGrade sets the lowest grade allowed to enroll.
func (cb *CourseBuilder) MinGrade(grade int) *CourseBuilder {
	cb.minGrade = grade
	return cb
}

// Honors marks the course as offering honors. An empty title keeps the
// course name.
func (cb *CourseBuilder) Honors(title string) *CourseBuilder {
	cb.hasHonors = true
	if title != "" {
		cb.honorsTitle = title
	}
	return cb
}

// Credit makes the course credit bearing. Categories may be empty for
// courses that only count toward the total.
func (cb *CourseBuilder) Credit(amount float64, categories ...string) *CourseBuilder {
	if amount < 0 {
		cb.b.errs = append(cb.b.errs, shared.ValidationError("catalog.Credit",
			"course %q: negative worth %v", cb.name, amount))
		return cb
	}
	cb.worth = amount
	for _, c := range categories {
		if !slices.Contains(cb.categories, c) {
			cb.categories = append(cb.categories, c)
		}
	}
	cb.b.RecordCredits(categories...)
	return cb
}

// Req adds prerequisites by course name.
func (cb *CourseBuilder) Req(names ...string) *CourseBuilder {
	cb.reqs = append(cb.reqs, names...)
	return cb
}

// Track places the course in a track at the given level.
func (cb *CourseBuilder) Track(track string, level int) *CourseBuilder {
	if !slices.Contains(cb.b.trackOrder, track) {
		cb.b.trackOrder = append(cb.b.trackOrder, track)
	}
	cb.track = track
	cb.level = level
	return cb
}

// AsElective registers the course as an elective.
func (cb *CourseBuilder) AsElective() *CourseBuilder {
	cb.kind = kindElective
	return cb
}

// AsSpecial registers the course as a special.
func (cb *CourseBuilder) AsSpecial() *CourseBuilder {
	cb.kind = kindSpecial
	return cb
}

// Name returns the declared course name.
func (cb *CourseBuilder) Name() string { return cb.name }

// Build validates the declarations and produces an immutable Catalog.
// Unknown prerequisite names fail with NotFound; duplicate names, bad
// grades, unreachable requirements and prerequisite cycles fail with a
// ValidationError.
func (b *Builder) Build() (*Catalog, error) {
	const op = "catalog.Build"

	errs := slices.Clone(b.errs)

	byName := make(map[string]int, len(b.decls))
	for i, d := range b.decls {
		if d.name == "" {
			errs = append(errs, shared.ValidationError(op, "course %d has no name", i))
			continue
		}
		if _, dup := byName[d.name]; dup {
			errs = append(errs, shared.ValidationError(op, "duplicate course name %q", d.name))
			continue
		}
		byName[d.name] = i
		if d.minGrade < MinGradeLevel || d.minGrade > MaxGradeLevel {
			errs = append(errs, shared.ValidationError(op, "course %q: min grade %d outside %d..%d",
				d.name, d.minGrade, MinGradeLevel, MaxGradeLevel))
		}
	}

	courses := make([]*Course, len(b.decls))
	for i, d := range b.decls {
		title := d.honorsTitle
		if title == "" {
			title = d.name
		}
		courses[i] = &Course{
			id:          i,
			name:        d.name,
			minGrade:    d.minGrade,
			hasHonors:   d.hasHonors,
			honorsTitle: title,
			worth:       d.worth,
			categories:  slices.Clone(d.categories),
			elective:    d.kind == kindElective,
			special:     d.kind == kindSpecial,
			track:       d.track,
			level:       d.level,
		}
	}

	for i, d := range b.decls {
		for _, name := range d.reqs {
			j, ok := byName[name]
			if !ok {
				errs = append(errs, shared.NotFound(op, "course %q requires unknown course %q", d.name, name))
				continue
			}
			if !slices.Contains(courses[i].prereqs, courses[j]) {
				courses[i].prereqs = append(courses[i].prereqs, courses[j])
			}
		}
	}

	conferred := make(map[string]bool)
	for _, c := range courses {
		for _, cat := range c.categories {
			if c.worth > 0 {
				conferred[cat] = true
			}
		}
	}
	for category, amount := range b.requirements {
		if category == TotalCreditsKey {
			errs = append(errs, shared.ValidationError(op, "%q is reserved", TotalCreditsKey))
			continue
		}
		if amount > 0 && !conferred[category] {
			errs = append(errs, shared.ValidationError(op, "no course confers required credit %q", category))
		}
	}

	if len(errs) == 0 {
		if err := checkAcyclic(courses); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building catalog: %w", errors.Join(errs...))
	}

	cat := &Catalog{
		courses:      courses,
		tracks:       make(map[string]map[int][]*Course),
		trackOrder:   slices.Clone(b.trackOrder),
		credits:      make(map[string]struct{}, len(b.credits)),
		requirements: make(map[string]float64, len(b.requirements)),
		totalReq:     b.totalReq,
	}
	for k := range b.credits {
		cat.credits[k] = struct{}{}
	}
	for k, v := range b.requirements {
		cat.requirements[k] = v
	}
	for _, c := range courses {
		switch {
		case c.elective:
			cat.electives = append(cat.electives, c)
		case c.special:
			cat.specials = append(cat.specials, c)
		}
		if c.track != "" {
			levels := cat.tracks[c.track]
			if levels == nil {
				levels = make(map[int][]*Course)
				cat.tracks[c.track] = levels
			}
			levels[c.level] = append(levels[c.level], c)
		}
	}
	return cat, nil
}

// checkAcyclic runs Kahn's algorithm over the prerequisite edges.
func checkAcyclic(courses []*Course) error {
	indegree := make([]int, len(courses))
	dependents := make([][]int, len(courses))
	for _, c := range courses {
		for _, p := range c.prereqs {
			indegree[c.id]++
			dependents[p.id] = append(dependents[p.id], c.id)
		}
	}

	queue := make([]int, 0, len(courses))
	for id, d := range indegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited == len(courses) {
		return nil
	}

	var cyclic []string
	for id, d := range indegree {
		if d > 0 {
			cyclic = append(cyclic, courses[id].name)
		}
	}
	return shared.ValidationError("catalog.Build", "prerequisite cycle among %v", cyclic)
}
