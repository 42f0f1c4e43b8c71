package financials

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/brushwork/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary gathers every derived figure shown for a single job.
type Summary struct {
	JobID             string  `json:"job_id"`
	TotalAdjustments  float64 `json:"total_adjustments"`
	PayoutDiscounts   float64 `json:"payout_discounts"`
	PayoutAdditions   float64 `json:"payout_additions"`
	Payout            float64 `json:"payout"`
	Profit            float64 `json:"profit"`
	MaterialCost      float64 `json:"material_cost"`
	ContractorCost    float64 `json:"contractor_cost"`
	MaterialUsage     float64 `json:"material_usage"`
	IdealMaterialCost float64 `json:"ideal_material_cost"`
	ProductionDays    float64 `json:"production_days"`
	DailyPay          float64 `json:"daily_pay"`
	MeetsDailyTarget  bool    `json:"meets_daily_target"`
	Share             float64 `json:"share"`
	Tax               float64 `json:"tax"`
}

// Summarize computes the full set of figures for job under settings.
func Summarize(job models.Job, settings models.GeneralSettings) Summary {
	payout := jobPayout(job, settings)
	profit := jobProfit(job, settings)
	days := ProductionDayCount(job.ProductionDays)

	var dailyPay decimal.Decimal
	if days > 0 {
		dailyPay = payout.Div(dec(days))
	}

	return Summary{
		JobID:             job.ID,
		TotalAdjustments:  TotalAdjustments(job.Adjustments, settings.HourlyRate),
		PayoutDiscounts:   PayoutDiscounts(job.Invoices),
		PayoutAdditions:   PayoutAdditions(job.Invoices),
		Payout:            payout.InexactFloat64(),
		Profit:            profit.InexactFloat64(),
		MaterialCost:      MaterialCost(job.Invoices),
		ContractorCost:    ContractorCost(job.Invoices),
		MaterialUsage:     MaterialUsage(job),
		IdealMaterialCost: dec(job.InitialValue).Mul(dec(settings.IdealMaterialCostPercentage)).Div(hundred).InexactFloat64(),
		ProductionDays:    days,
		DailyPay:          dailyPay.InexactFloat64(),
		MeetsDailyTarget:  days > 0 && dailyPay.GreaterThanOrEqual(dec(settings.DailyPayTarget)),
		Share:             payout.Mul(dec(settings.SharePercentage)).Div(hundred).InexactFloat64(),
		Tax:               profit.Mul(dec(settings.TaxRate)).Div(hundred).InexactFloat64(),
	}
}
