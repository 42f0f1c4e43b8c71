// Package export renders payroll reports as PDF and XLSX documents.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/report"
)

const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Render dispatches on format.
func Render(format string, in lifecycle.ReportInput, lang string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return PDF(in, lang)
	case FormatXLSX:
		return XLSX(in, lang)
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

func dateOrBlank(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// PDF renders the report as an A4 table.
func PDF(in lifecycle.ReportInput, lang string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)
	h := report.Labels(lang)

	bold := props.Text{Style: fontstyle.Bold, Size: 9}
	right := props.Text{Size: 9, Align: align.Right}
	boldRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	plain := props.Text{Size: 9}

	if in.BusinessName != "" {
		m.AddRow(8, text.NewCol(12, in.BusinessName, props.Text{Style: fontstyle.Bold, Size: 12}))
	}
	m.AddRow(10, text.NewCol(12, report.Subject(in, lang), props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Center}))
	m.AddRow(4)

	m.AddRows(row.New(7).Add(
		text.NewCol(3, h.Job, bold),
		text.NewCol(3, h.Client, bold),
		text.NewCol(2, h.WorkOrder, bold),
		text.NewCol(2, h.Payout, boldRight),
		text.NewCol(2, h.Material, boldRight),
	))
	for _, j := range in.Jobs {
		m.AddRows(row.New(6).Add(
			text.NewCol(3, j.Title, plain),
			text.NewCol(3, j.ClientName, plain),
			text.NewCol(2, j.WorkOrderNumber, plain),
			text.NewCol(2, report.Money(j.Payout), right),
			text.NewCol(2, fmt.Sprintf("%.1f %%", j.MaterialUsage), right),
		))
	}
	m.AddRows(row.New(8).Add(
		text.NewCol(8, h.Total, bold),
		text.NewCol(2, report.Money(in.TotalPayout), boldRight),
		text.NewCol(2, ""),
	))
	m.AddRow(6, text.NewCol(12, dateOrBlank(in.CurrentDate), props.Text{Size: 8, Align: align.Right}))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
