package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/report"
)

// XLSX renders the report as a single-sheet workbook with one row per job and
// a total row.
func XLSX(in lifecycle.ReportInput, lang string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("W%02d", in.WeekNumber)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	h := report.Labels(lang)
	headers := []string{h.Job, h.Client, h.WorkOrder, h.Completed, h.Payout, h.Material}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", boldStyle); err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	r := 2
	for _, j := range in.Jobs {
		completed := ""
		if j.Deadline != nil {
			completed = j.Deadline.Format("2006-01-02")
		}
		values := []any{j.Title, j.ClientName, j.WorkOrderNumber, completed, j.Payout, j.MaterialUsage / 100}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", r), &values); err != nil {
			return nil, err
		}
		r++
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", r), h.Total); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("E%d", r), in.TotalPayout); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("F%d", r), boldStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "E2", fmt.Sprintf("E%d", r), moneyStyle); err != nil {
		return nil, err
	}
	pctStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return nil, err
	}
	if r > 2 {
		if err := f.SetCellStyle(sheet, "F2", fmt.Sprintf("F%d", r-1), pctStyle); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheet, "A", "C", 24)
	_ = f.SetColWidth(sheet, "D", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
