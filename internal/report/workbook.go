package report

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-cohort/internal/curriculum"
	"github.com/p-n-ai/pai-cohort/internal/simulation"
	"github.com/p-n-ai/pai-cohort/internal/student"
)

// Sheet names of the run workbook.
const (
	SheetSummary  = "Summary"
	SheetYears    = "Years"
	SheetStudents = "Students"
)

// WriteWorkbook saves a run as an XLSX workbook with a summary sheet, one
// row per year and one row per student.
func WriteWorkbook(path string, cat *curriculum.Catalog, res *simulation.Result) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close workbook", "path", path, "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{SheetYears, SheetStudents} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	summary := [][]any{
		{"Run", res.RunID},
		{"Seed", res.Seed},
		{"Years", res.Years},
		{"Enrolled", res.Enrolled},
		{"Graduated", len(res.Graduates)},
		{"Dropped out", len(res.Dropouts)},
		{"Active", len(res.Active)},
		{"Graduation rate", res.GraduationRate()},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetColStyle(SheetSummary, "A", bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}

	years := [][]any{{"Year", "Active", "Enrolled", "Graduated", "Dropped out", "Placements"}}
	for _, st := range res.Stats {
		years = append(years, []any{st.Year, st.Active, st.Enrolled, st.Graduated, st.DroppedOut, st.PlacementCredits})
	}
	if err := writeRows(f, SheetYears, years); err != nil {
		return err
	}

	categories := cat.CreditCategories()
	header := []any{"ID", "Name", "Status", "Age", "Grade", "Total credits"}
	for _, c := range categories {
		header = append(header, c)
	}
	header = append(header, "Years", "Honors", "Missing")
	students := [][]any{header}
	for _, group := range []struct {
		status   string
		students []*student.Student
	}{
		{"graduated", res.Graduates},
		{"dropped_out", res.Dropouts},
		{"active", res.Active},
	} {
		for _, s := range group.students {
			students = append(students, studentRow(cat, categories, group.status, s))
		}
	}
	if err := writeRows(f, SheetStudents, students); err != nil {
		return err
	}

	for _, sheet := range []string{SheetYears, SheetStudents} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("styling %s header: %w", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	slog.Info("workbook written", "path", path, "students", len(students)-1)
	return nil
}

func studentRow(cat *curriculum.Catalog, categories []string, status string, s *student.Student) []any {
	row := []any{s.ID, s.Name(), status, s.Age, s.Grade, s.TotalCredits()}
	for _, c := range categories {
		row = append(row, s.Credit(c))
	}

	missing := cat.MissingRequirements(s)
	parts := make([]string, 0, len(missing))
	for _, category := range sortedKeys(missing) {
		parts = append(parts, fmt.Sprintf("%s %g", category, missing[category]))
	}
	return append(row, s.Years(), s.HonorsCount(), strings.Join(parts, ", "))
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
