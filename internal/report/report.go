// Package report turns payroll report input into an e-mail message.
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/diewo77/brushwork/i18n"
	"github.com/diewo77/brushwork/internal/lifecycle"
)

const dateLayout = "2006-01-02"

// Message is a composed e-mail.
type Message struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

var bodyTmpl = template.Must(template.New("payroll").Funcs(template.FuncMap{
	"money": Money,
	"pct":   func(v float64) string { return fmt.Sprintf("%.1f %%", v) },
	"day": func(t any) string {
		switch v := t.(type) {
		case interface{ Format(string) string }:
			return v.Format(dateLayout)
		}
		return ""
	},
}).Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<body style="font-family:sans-serif">
{{- if .In.BusinessLogoURL}}<img src="{{.In.BusinessLogoURL}}" alt="{{.In.BusinessName}}" style="max-height:60px">{{end}}
<h1>{{.Subject}}</h1>
{{- if .In.BusinessName}}<p>{{.In.BusinessName}}</p>{{end}}
<table cellpadding="6" style="border-collapse:collapse">
<thead><tr>
<th align="left">{{.Labels.Job}}</th><th align="left">{{.Labels.Client}}</th><th align="left">{{.Labels.WorkOrder}}</th>
<th align="left">{{.Labels.Completed}}</th><th align="right">{{.Labels.Payout}}</th><th align="right">{{.Labels.Material}}</th>
</tr></thead>
<tbody>
{{- range .In.Jobs}}
<tr>
<td>{{.Title}}</td><td>{{.ClientName}}</td><td>{{.WorkOrderNumber}}</td>
<td>{{if .Deadline}}{{day .Deadline}}{{end}}</td><td align="right">{{money .Payout}}</td><td align="right">{{pct .MaterialUsage}}</td>
</tr>
{{- if .Notes}}<tr><td colspan="6"><em>{{.Notes}}</em></td></tr>{{end}}
{{- end}}
</tbody>
<tfoot><tr><th colspan="4" align="left">{{.Labels.Total}}</th><th align="right">{{money .In.TotalPayout}}</th><th></th></tr></tfoot>
</table>
<p>{{day .In.CurrentDate}}</p>
</body>
</html>`))

// Headings are the column titles of the payroll table.
type Headings struct {
	Job, Client, WorkOrder, Completed, Payout, Material, Total string
}

var columnLabels = map[string]Headings{
	"fr": {"Chantier", "Client", "Bon de travail", "Terminé le", "Paie", "Matériaux", ""},
	"en": {"Job", "Client", "Work order", "Completed", "Payout", "Material", ""},
}

// Labels returns the table headings for lang, French when unsupported.
func Labels(lang string) Headings {
	l, ok := columnLabels[lang]
	if !ok {
		l = columnLabels[i18n.Default]
	}
	l.Total = i18n.T(lang, "report_total")
	return l
}

// Subject is the message subject for the report week.
func Subject(in lifecycle.ReportInput, lang string) string {
	return fmt.Sprintf("%s %d (%s - %s)", i18n.T(lang, "report_subject"), in.WeekNumber,
		in.StartDate.Format(dateLayout), in.EndDate.Format(dateLayout))
}

// Money formats an amount with two decimals.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Compose renders the payroll report e-mail in lang.
func Compose(in lifecycle.ReportInput, lang string) (Message, error) {
	subject := Subject(in, lang)
	var buf bytes.Buffer
	err := bodyTmpl.Execute(&buf, struct {
		Lang    string
		Subject string
		Labels  Headings
		In      lifecycle.ReportInput
	}{lang, subject, Labels(lang), in})
	if err != nil {
		return Message{}, fmt.Errorf("render payroll message: %w", err)
	}
	return Message{Subject: subject, Body: buf.String()}, nil
}
