// Package report renders catalogs, students and simulation results as text
// and as XLSX workbooks.
package report

import (
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/grouping"
	"github.com/p-n-ai/pai-cohort/internal/simulation"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// printer formats numbers with grouping separators and remembers the
// first write error.
type printer struct {
	p   *message.Printer
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{p: message.NewPrinter(language.English), w: w}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = p.p.Fprintf(p.w, format, args...)
}

// Summary writes the headline numbers of a run and its per-year table.
func Summary(w io.Writer, res *simulation.Result) error {
	p := newPrinter(w)
	p.printf("Run %s (seed %d, %d years)\n", res.RunID, res.Seed, res.Years)
	p.printf("  enrolled:   %d\n", res.Enrolled)
	p.printf("  graduated:  %d\n", len(res.Graduates))
	p.printf("  dropped:    %d\n", len(res.Dropouts))
	p.printf("  active:     %d\n", len(res.Active))
	p.printf("  graduation: %.1f%%\n\n", res.GraduationRate()*100)
	if p.err != nil {
		return p.err
	}
	return Years(w, res.Stats)
}

// Years writes one row per simulated year.
func Years(w io.Writer, stats []simulation.YearStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := newPrinter(tw)
	p.printf("YEAR\tACTIVE\tENROLLED\tGRADUATED\tDROPPED\tPLACEMENTS\n")
	for _, st := range stats {
		p.printf("%d\t%d\t%d\t%d\t%d\t%d\n", st.Year, st.Active, st.Enrolled, st.Graduated, st.DroppedOut, st.PlacementCredits)
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// Catalog writes every track level by level, then the remaining courses
// and the graduation requirements.
func Catalog(w io.Writer, cat *curriculum.Catalog) error {
	p := newPrinter(w)
	inTrack := make(map[int]bool)

	for _, track := range cat.Tracks() {
		p.printf("%s\n", track)
		for _, level := range cat.TrackLevels(track) {
			for _, c := range cat.TrackLevel(track, level) {
				inTrack[c.ID()] = true
				p.printf("  %d. %s\n", level+1, describe(c))
			}
		}
	}

	var generic []*curriculum.Course
	for _, c := range cat.Courses() {
		if !c.IsElective() && !c.IsSpecial() {
			generic = append(generic, c)
		}
	}
	sections := []struct {
		title   string
		courses []*curriculum.Course
	}{
		{"Courses", generic},
		{"Electives", cat.Electives()},
		{"Specials", cat.Specials()},
	}
	for _, sec := range sections {
		var courses []*curriculum.Course
		for _, c := range sec.courses {
			if !inTrack[c.ID()] {
				courses = append(courses, c)
			}
		}
		if len(courses) == 0 {
			continue
		}
		p.printf("%s\n", sec.title)
		for _, c := range courses {
			p.printf("  %s\n", describe(c))
		}
	}

	p.printf("Graduation requirements\n")
	reqs := cat.GraduationRequirements()
	for _, category := range sortedKeys(reqs) {
		p.printf("  %-16s %g\n", category, reqs[category])
	}
	if total := cat.TotalRequirement(); total > 0 {
		p.printf("  %-16s %g (recorded)\n", curriculum.TotalCreditsKey, total)
	}
	return p.err
}

// Student writes one student's record.
func Student(w io.Writer, cat *curriculum.Catalog, s *student.Student) error {
	p := newPrinter(w)
	p.printf("#%d %s, age %d, grade %d\n", s.ID, s.Name(), s.Age, s.Grade)

	credits := s.Credits()
	p.printf("  credits: %g total", s.TotalCredits())
	for _, category := range sortedKeys(credits) {
		p.printf(", %s %g", category, credits[category])
	}
	p.printf("\n")

	if enrolled := s.Enrolled(); len(enrolled) > 0 {
		titles := make([]string, len(enrolled))
		for i, c := range enrolled {
			titles[i] = title(c, s.IsEnrolledInHonors(c))
		}
		p.printf("  enrolled: %s\n", strings.Join(titles, ", "))
	}
	if passed := s.Passed(); len(passed) > 0 {
		honors := s.Honors()
		titles := make([]string, len(passed))
		for i, c := range passed {
			titles[i] = title(c, slices.Contains(honors, c))
		}
		p.printf("  passed: %s\n", strings.Join(titles, ", "))
	}
	if failed := s.Failed(); len(failed) > 0 {
		titles := make([]string, len(failed))
		for i, c := range failed {
			titles[i] = c.Name()
		}
		p.printf("  failed: %s\n", strings.Join(titles, ", "))
	}

	missing := cat.MissingRequirements(s)
	if len(missing) == 0 {
		p.printf("  can graduate\n")
	} else {
		parts := make([]string, 0, len(missing))
		for _, category := range sortedKeys(missing) {
			parts = append(parts, p.p.Sprintf("%s %g", category, missing[category]))
		}
		p.printf("  missing: %s\n", strings.Join(parts, ", "))
	}
	if short := cat.TotalShortfall(s); short > 0 {
		p.printf("  %g credits below the recorded total\n", short)
	}
	for year, courses := range s.History() {
		titles := make([]string, len(courses))
		for i, c := range courses {
			titles[i] = c.Name()
		}
		p.printf("  year %d: %s\n", year+1, strings.Join(titles, ", "))
	}
	for _, note := range s.Info() {
		p.printf("  - %s\n", note)
	}
	return p.err
}

// Groups writes each schedule group with its course list.
func Groups(w io.Writer, groups []grouping.Group) error {
	p := newPrinter(w)
	for i, g := range groups {
		names := make([]string, len(g.Courses))
		for j, c := range g.Courses {
			names[j] = c.Name()
		}
		p.printf("group %d: %d students, %d courses\n", i+1, len(g.Students), len(g.Courses))
		p.printf("\t%s\n", strings.Join(names, "\n\t"))
	}
	return p.err
}

func describe(c *curriculum.Course) string {
	var b strings.Builder
	b.WriteString(c.String())
	if cats := c.Categories(); len(cats) > 0 {
		b.WriteString(" [" + strings.Join(cats, ", ") + "]")
	}
	if c.MinGrade() > curriculum.MinGradeLevel {
		b.WriteString(" grade " + strconv.Itoa(c.MinGrade()) + "+")
	}
	if c.HasHonors() {
		b.WriteString(" honors")
	}
	if prereqs := c.Prerequisites(); len(prereqs) > 0 {
		names := make([]string, len(prereqs))
		for i, pr := range prereqs {
			names[i] = pr.Name()
		}
		b.WriteString(" requires " + strings.Join(names, ", "))
	}
	return b.String()
}

// title names a course as taken, using the honors title when held with
// honors.
func title(c *curriculum.Course, honors bool) string {
	if !honors {
		return c.Name()
	}
	if t := c.HonorsTitle(); t != "" && t != c.Name() {
		return t
	}
	return "Honors " + c.Name()
}

func sortedKeys(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}
