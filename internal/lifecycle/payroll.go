package lifecycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/brushwork/internal/financials"
	"github.com/diewo77/brushwork/internal/models"
)

// Week is an ISO 8601 week.
type Week struct {
	Year   int
	Number int
	Start  time.Time
	End    time.Time
}

// WeekOf returns the ISO week containing t. Start is Monday 00:00 and End is the
// last nanosecond of Sunday, both in t's location.
func WeekOf(t time.Time) Week {
	year, week := t.ISOWeek()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	start := time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return Week{Year: year, Number: week, Start: start, End: end}
}

// ReportID is the deterministic id of a user's report for an ISO week.
func ReportID(userID uint, year, week int) string {
	return fmt.Sprintf("%d-%d-W%02d", userID, year, week)
}

// BuildPayrollReport snapshots the jobs awaiting payment for the week of now.
// Jobs in any other status are ignored.
func BuildPayrollReport(userID uint, jobs []models.Job, settings models.GeneralSettings, now time.Time) models.PayrollReport {
	w := WeekOf(now)
	total := decimal.Zero
	ids := make([]string, 0, len(jobs))
	lines := make([]ReportJob, 0, len(jobs))
	for _, j := range jobs {
		if j.Status != models.StatusOpenPayment {
			continue
		}
		line := reportLine(j, settings)
		total = total.Add(decimal.NewFromFloat(line.Payout))
		ids = append(ids, j.ID)
		lines = append(lines, line)
	}
	return models.PayrollReport{
		ID:          ReportID(userID, w.Year, w.Number),
		UserID:      userID,
		Year:        w.Year,
		WeekNumber:  w.Number,
		StartDate:   w.Start,
		EndDate:     w.End,
		SentDate:    now,
		TotalPayout: total.InexactFloat64(),
		JobCount:    len(ids),
		JobIDs:      ids,
		Lines:       lines,
	}
}

// ReportJob is one job line handed to report consumers.
type ReportJob = models.PayrollLine

func reportLine(j models.Job, settings models.GeneralSettings) ReportJob {
	return ReportJob{
		ID:              j.ID,
		Title:           j.Title,
		ClientName:      j.ClientName,
		WorkOrderNumber: j.WorkOrderNumber,
		StartDate:       j.StartDate,
		Deadline:        j.Deadline,
		Payout:          financials.JobPayout(j, settings),
		MaterialUsage:   financials.MaterialUsage(j),
		Notes:           j.Notes,
	}
}

// ReportInput is everything a consumer needs to render a payroll report.
type ReportInput struct {
	Jobs            []ReportJob `json:"jobs"`
	CurrentDate     time.Time   `json:"currentDate"`
	WeekNumber      int         `json:"weekNumber"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	BusinessName    string      `json:"businessName,omitempty"`
	BusinessLogoURL string      `json:"businessLogoUrl,omitempty"`
	TotalPayout     float64     `json:"totalPayout"`
}

// BuildReportInput assembles the consumer input for report from its stored
// lines. Reports saved without lines fall back to the listed jobs, in the
// report's order; jobs is ignored otherwise. TotalPayout is taken from the
// report snapshot.
func BuildReportInput(report models.PayrollReport, jobs []models.Job, settings models.GeneralSettings, now time.Time) ReportInput {
	lines := []ReportJob(report.Lines)
	if len(lines) == 0 && len(report.JobIDs) > 0 {
		lines = linesFromJobs(report.JobIDs, jobs, settings)
	}
	if lines == nil {
		lines = []ReportJob{}
	}
	return ReportInput{
		Jobs:            lines,
		CurrentDate:     now,
		WeekNumber:      report.WeekNumber,
		StartDate:       report.StartDate,
		EndDate:         report.EndDate,
		BusinessName:    settings.BusinessName,
		BusinessLogoURL: settings.BusinessLogoURL,
		TotalPayout:     report.TotalPayout,
	}
}

func linesFromJobs(ids []string, jobs []models.Job, settings models.GeneralSettings) []ReportJob {
	byID := make(map[string]models.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	lines := make([]ReportJob, 0, len(ids))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			lines = append(lines, reportLine(j, settings))
		}
	}
	return lines
}
