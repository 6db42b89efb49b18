package projections

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"playbook/internal/domain/report"
	"playbook/internal/domain/survey"
)

// ExportFilename names the downloaded workbook.
const ExportFilename = "inventors-playbook-report.xlsx"

// Sheet names in the exported workbook.
const (
	SheetSummary  = "Summary"
	SheetSurveys  = "Surveys"
	SheetFriction = "Friction"
)

// WriteReportWorkbook writes r as an XLSX workbook with summary, survey and
// friction sheets.
// PRE: r came from QueryGetAdminReport
func WriteReportWorkbook(w io.Writer, r AdminReport, generated time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	summary := [][]any{
		{"Metric", "Value"},
		{"Generated", generated.UTC().Format(time.RFC3339)},
		{"Total seats", r.Inventory.TotalSeats},
		{"Claimed seats", r.Inventory.ClaimedSeats},
		{"Remaining seats", r.Remaining},
		{"Completed", r.Completed},
		{"Completion rate (%)", r.CompletionRate},
		{"Pre respondents", r.Pre.Respondents},
		{"Post respondents", r.Post.Respondents},
		{"Pre mean", report.FormatAverage(r.Pre.Mean)},
		{"Post mean", report.FormatAverage(r.Post.Mean)},
		{"Delta", r.FormattedDelta()},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSurveys); err != nil {
		return err
	}
	surveys := [][]any{{"Survey", "Question", "Average"}}
	for _, c := range []struct {
		cohort    report.Cohort
		questions []string
	}{{r.Pre, survey.Questions[survey.TypePre]}, {r.Post, survey.Questions[survey.TypePost]}} {
		for i, avg := range c.cohort.QuestionAverages {
			q := fmt.Sprintf("Q%d", i+1)
			if i < len(c.questions) {
				q = c.questions[i]
			}
			surveys = append(surveys, []any{c.cohort.Type, q, report.FormatAverage(avg)})
		}
	}
	if err := writeRows(f, SheetSurveys, surveys); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetFriction); err != nil {
		return err
	}
	friction := [][]any{{"Submitted", "User", "Struggles"}}
	for _, l := range r.FrictionLogs {
		friction = append(friction, []any{l.CreatedAt.UTC().Format(time.RFC3339), l.UserID, strings.Join(l.Struggles, "\n")})
	}
	if err := writeRows(f, SheetFriction, friction); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
