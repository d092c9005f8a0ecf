package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	plansSheet   = "Plans"
	summarySheet = "Summary"
)

var planHeader = []string{"Date", "Start", "End", "Subject", "Content", "Type", "Range", "Day", "Minutes", "Status"}

// WriteWorkbook writes the plans and a per-date minutes summary as xlsx.
func WriteWorkbook(w io.Writer, group *domain.PlanGroup, plans []domain.Plan) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(plansSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	_ = f.DeleteSheet("Sheet1")

	header, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	if err := writeRow(f, plansSheet, 1, toAny(planHeader)); err != nil {
		return err
	}
	_ = f.SetCellStyle(plansSheet, "A1", cell(len(planHeader), 1), header)
	_ = f.SetColWidth(plansSheet, "A", "A", 12)
	_ = f.SetColWidth(plansSheet, "D", "E", 18)

	minutes := make(map[string]int)
	for i, p := range plans {
		date := domain.DateKey(p.PlanDate)
		minutes[date] += p.Minutes()
		row := []any{
			date,
			p.StartTime.String(),
			p.EndTime.String(),
			p.Subject,
			p.ContentID,
			string(p.ContentType),
			fmt.Sprintf("%d-%d", p.RangeStart, p.RangeEnd),
			string(p.DayType),
			p.Minutes(),
			string(p.Status),
		}
		if err := writeRow(f, plansSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, summarySheet, 1, []any{"Date", "Minutes"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "B1", header)
	dates := make([]string, 0, len(minutes))
	for d := range minutes {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	total := 0
	for i, d := range dates {
		total += minutes[d]
		if err := writeRow(f, summarySheet, i+2, []any{d, minutes[d]}); err != nil {
			return err
		}
	}
	if err := writeRow(f, summarySheet, len(dates)+2, []any{"Total", total}); err != nil {
		return err
	}
	_ = f.SetDocProps(&excelize.DocProperties{Title: group.Name, Creator: "studyplan"})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
