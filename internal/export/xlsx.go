// Package export writes workout plans to spreadsheet form.
package export

import (
	"fmt"
	"io"

	"github.com/aithlete/aithlete/internal/models"
	"github.com/xuri/excelize/v2"
)

// Download metadata for spreadsheet exports.
const (
	FileName    = "workout_plan.xlsx"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SheetPlan is the name of the single worksheet.
const SheetPlan = "Workout Plan"

var headers = []string{"Day", "Exercise", "Duration", "Instructions"}

// Workbook builds a workbook with one row per exercise, in plan order.
// The caller owns the returned file and must Close it.
func Workbook(plan *models.Plan) (*excelize.File, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPlan); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if err := fillPlanSheet(f, plan); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteXLSX writes the plan workbook to w.
func WriteXLSX(plan *models.Plan, w io.Writer) error {
	f, err := Workbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func fillPlanSheet(f *excelize.File, plan *models.Plan) error {
	sheet := SheetPlan

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2F3C7E"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FBEAEB"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "2F3C7E", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("creating wrap style: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", "Aithlete Workout Plan"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", titleStyle); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 30); err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A3", "D3", headerStyle); err != nil {
		return err
	}

	row := 4
	for _, day := range plan.Days {
		for _, ex := range day.Exercises {
			values := []string{day.Label, ex.Name, ex.DurationOrDefault(), ex.InstructionsOrDefault()}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("writing %s: %w", cell, err)
				}
			}
			row++
		}
	}
	if row > 4 {
		if err := f.SetCellStyle(sheet, "D4", fmt.Sprintf("D%d", row-1), wrapStyle); err != nil {
			return err
		}
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "C", 14)
	f.SetColWidth(sheet, "D", "D", 70)
	f.SetActiveSheet(0)
	return nil
}
