// Package financials derives payout, profit and cost figures from a job and the
// owner's general settings. Every function is pure: callers pass copies and get
// numbers back. Money is summed with decimal arithmetic and returned as float64.
package financials

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/diewo77/brushwork/internal/models"
)

// dec converts a stored amount to a decimal. NaN and infinities count as zero.
func dec(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// sumInvoices totals the amounts of the invoices accepted by keep.
func sumInvoices(invoices []models.JobInvoice, keep func(models.JobInvoice) bool) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		if keep(inv) {
			total = total.Add(dec(inv.Amount))
		}
	}
	return total
}

func totalAdjustments(adjustments []models.Adjustment, hourlyRate float64) decimal.Decimal {
	total := decimal.Zero
	for _, adj := range adjustments {
		if adj.Type == models.AdjustmentTime {
			rate := hourlyRate
			if adj.HourlyRate != nil {
				rate = *adj.HourlyRate
			}
			total = total.Add(dec(adj.Value).Mul(dec(rate)))
			continue
		}
		total = total.Add(dec(adj.Value))
	}
	return total
}

// TotalAdjustments sums the adjustments. Time adjustments are hours priced at the
// adjustment's own rate, or hourlyRate when it has none; other types count their
// signed value as is.
func TotalAdjustments(adjustments []models.Adjustment, hourlyRate float64) float64 {
	return totalAdjustments(adjustments, hourlyRate).InexactFloat64()
}

// PayoutDiscounts sums invoices flagged as payout discounts.
func PayoutDiscounts(invoices []models.JobInvoice) float64 {
	return sumInvoices(invoices, func(i models.JobInvoice) bool { return i.IsPayoutDiscount }).InexactFloat64()
}

// PayoutAdditions sums invoices flagged as payout additions. An invoice carrying
// both flags is counted here and in PayoutDiscounts.
func PayoutAdditions(invoices []models.JobInvoice) float64 {
	return sumInvoices(invoices, func(i models.JobInvoice) bool { return i.IsPayoutAddition }).InexactFloat64()
}

func jobPayout(job models.Job, settings models.GeneralSettings) decimal.Decimal {
	return dec(job.InitialValue).
		Add(totalAdjustments(job.Adjustments, settings.HourlyRate)).
		Sub(sumInvoices(job.Invoices, func(i models.JobInvoice) bool { return i.IsPayoutDiscount })).
		Add(sumInvoices(job.Invoices, func(i models.JobInvoice) bool { return i.IsPayoutAddition }))
}

// JobPayout is what the crew is owed for the job:
// initial value + adjustments - payout discounts + payout additions.
// IsFixedPay and Budget do not take part in it.
func JobPayout(job models.Job, settings models.GeneralSettings) float64 {
	return jobPayout(job, settings).InexactFloat64()
}

// MaterialCost sums every invoice on the job, whatever its flags.
func MaterialCost(invoices []models.JobInvoice) float64 {
	return sumInvoices(invoices, func(models.JobInvoice) bool { return true }).InexactFloat64()
}

// ContractorCost sums invoices paid by the contractor.
func ContractorCost(invoices []models.JobInvoice) float64 {
	return sumInvoices(invoices, func(i models.JobInvoice) bool { return i.PaidByContractor }).InexactFloat64()
}

func jobProfit(job models.Job, settings models.GeneralSettings) decimal.Decimal {
	return dec(job.InitialValue).
		Add(totalAdjustments(job.Adjustments, settings.HourlyRate)).
		Sub(sumInvoices(job.Invoices, func(i models.JobInvoice) bool { return !i.PaidByContractor }))
}

// JobProfit is initial value + adjustments minus the invoices the business paid.
// Invoices paid by the contractor never reduce profit.
func JobProfit(job models.Job, settings models.GeneralSettings) float64 {
	return jobProfit(job, settings).InexactFloat64()
}

// MaterialUsage is the material cost as a percentage of the initial value,
// 0 when the job has no initial value.
func MaterialUsage(job models.Job) float64 {
	base := dec(job.InitialValue)
	if base.IsZero() {
		return 0
	}
	cost := sumInvoices(job.Invoices, func(models.JobInvoice) bool { return true })
	return cost.Div(base).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// ProductionDayCount counts full days as 1 and half days as 0.5.
func ProductionDayCount(days []models.ProductionDay) float64 {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(dec(d.Weight()))
	}
	return total.InexactFloat64()
}
