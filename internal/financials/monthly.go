package financials

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/brushwork/internal/models"
)

// MonthTotals is one chart bucket.
type MonthTotals struct {
	Month        time.Month `json:"month"`
	JobCount     int        `json:"job_count"`
	Revenue      float64    `json:"revenue"`
	Payout       float64    `json:"payout"`
	Profit       float64    `json:"profit"`
	MaterialCost float64    `json:"material_cost"`
}

// bucketDate picks the date a job is charted under: finalization first, then
// completion. Jobs with neither are not charted.
func bucketDate(job models.Job) (time.Time, bool) {
	if job.FinalizationDate != nil {
		return *job.FinalizationDate, true
	}
	if job.Deadline != nil {
		return *job.Deadline, true
	}
	return time.Time{}, false
}

// MonthlyTotals buckets jobs by month for the given year. The result always holds
// twelve entries, January first.
func MonthlyTotals(jobs []models.Job, settings models.GeneralSettings, year int) []MonthTotals {
	type acc struct {
		count                          int
		revenue, payout, profit, costs decimal.Decimal
	}
	var buckets [12]acc
	for _, job := range jobs {
		at, ok := bucketDate(job)
		if !ok || at.Year() != year {
			continue
		}
		b := &buckets[at.Month()-1]
		b.count++
		b.revenue = b.revenue.Add(dec(job.InitialValue))
		b.payout = b.payout.Add(jobPayout(job, settings))
		b.profit = b.profit.Add(jobProfit(job, settings))
		b.costs = b.costs.Add(sumInvoices(job.Invoices, func(models.JobInvoice) bool { return true }))
	}

	out := make([]MonthTotals, 12)
	for i, b := range buckets {
		out[i] = MonthTotals{
			Month:        time.Month(i + 1),
			JobCount:     b.count,
			Revenue:      b.revenue.InexactFloat64(),
			Payout:       b.payout.InexactFloat64(),
			Profit:       b.profit.InexactFloat64(),
			MaterialCost: b.costs.InexactFloat64(),
		}
	}
	return out
}
