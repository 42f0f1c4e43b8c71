package financials

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/brushwork/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestJobPayout_NoItemsEqualsInitialValue(t *testing.T) {
	for _, v := range []float64{0, 1, 1000, 1234.56, -50} {
		job := models.Job{InitialValue: v}
		assert.Equal(t, v, JobPayout(job, models.GeneralSettings{HourlyRate: 42}))
	}
}

func TestJobPayout_IgnoresFixedPayAndBudget(t *testing.T) {
	job := models.Job{InitialValue: 800, Budget: 500, IsFixedPay: false}
	assert.Equal(t, 800.0, JobPayout(job, models.GeneralSettings{}))
	job.IsFixedPay = true
	assert.Equal(t, 800.0, JobPayout(job, models.GeneralSettings{}))
}

func TestJobPayout_WorkedExample(t *testing.T) {
	job := models.Job{
		InitialValue: 1000,
		Adjustments:  []models.Adjustment{{Type: models.AdjustmentTime, Value: 2, HourlyRate: ptr(50.0)}},
		Invoices:     []models.JobInvoice{{Amount: 100, IsPayoutDiscount: true}},
	}
	settings := models.GeneralSettings{HourlyRate: 30}

	assert.Equal(t, 100.0, TotalAdjustments(job.Adjustments, settings.HourlyRate))
	assert.Equal(t, 100.0, PayoutDiscounts(job.Invoices))
	assert.Equal(t, 0.0, PayoutAdditions(job.Invoices))
	assert.Equal(t, 1000.0, JobPayout(job, settings))
}

func TestTotalAdjustments(t *testing.T) {
	tests := []struct {
		name string
		adjs []models.Adjustment
		rate float64
		want float64
	}{
		{"empty", nil, 30, 0},
		{"time uses default rate", []models.Adjustment{{Type: models.AdjustmentTime, Value: 3}}, 30, 90},
		{"time uses own rate", []models.Adjustment{{Type: models.AdjustmentTime, Value: 3, HourlyRate: ptr(40.0)}}, 30, 120},
		{"own zero rate wins", []models.Adjustment{{Type: models.AdjustmentTime, Value: 3, HourlyRate: ptr(0.0)}}, 30, 0},
		{"material is flat", []models.Adjustment{{Type: models.AdjustmentMaterial, Value: 25.5}}, 30, 25.5},
		{"negative general", []models.Adjustment{{Type: models.AdjustmentGeneral, Value: -40}}, 30, -40},
		{"mixed", []models.Adjustment{
			{Type: models.AdjustmentTime, Value: 1.5},
			{Type: models.AdjustmentMaterial, Value: 10},
			{Type: models.AdjustmentGeneral, Value: -5},
		}, 20, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalAdjustments(tt.adjs, tt.rate))
		})
	}
}

func TestTotalAdjustments_TimeScalesWithHourlyRate(t *testing.T) {
	adjs := []models.Adjustment{{Type: models.AdjustmentTime, Value: 4}}
	base := TotalAdjustments(adjs, 25)
	assert.Equal(t, 100.0, base)
	assert.Equal(t, base*2, TotalAdjustments(adjs, 50))
}

func TestTotalAdjustments_NonFiniteValuesCountAsZero(t *testing.T) {
	adjs := []models.Adjustment{
		{Type: models.AdjustmentGeneral, Value: math.NaN()},
		{Type: models.AdjustmentTime, Value: 2, HourlyRate: ptr(math.Inf(1))},
		{Type: models.AdjustmentMaterial, Value: 7},
	}
	assert.Equal(t, 7.0, TotalAdjustments(adjs, 10))
}

func TestInvoiceWithBothFlagsCountsInBothSums(t *testing.T) {
	invoices := []models.JobInvoice{
		{Amount: 60, IsPayoutDiscount: true, IsPayoutAddition: true},
		{Amount: 10, IsPayoutDiscount: true},
		{Amount: 5, IsPayoutAddition: true},
	}
	assert.Equal(t, 70.0, PayoutDiscounts(invoices))
	assert.Equal(t, 65.0, PayoutAdditions(invoices))

	job := models.Job{InitialValue: 100, Invoices: invoices}
	assert.Equal(t, 95.0, JobPayout(job, models.GeneralSettings{}))
}

func TestMaterialAndContractorCost(t *testing.T) {
	invoices := []models.JobInvoice{
		{Amount: 100},
		{Amount: 50, PaidByContractor: true},
		{Amount: 25, IsPayoutDiscount: true, PaidByContractor: true},
	}
	assert.Equal(t, 175.0, MaterialCost(invoices))
	assert.Equal(t, 75.0, ContractorCost(invoices))
	assert.Equal(t, 0.0, MaterialCost(nil))
}

func TestJobProfit_ExcludesContractorPaidInvoices(t *testing.T) {
	job := models.Job{
		InitialValue: 1000,
		Adjustments:  []models.Adjustment{{Type: models.AdjustmentGeneral, Value: 50}},
		Invoices: []models.JobInvoice{
			{Amount: 200},
			{Amount: 300, PaidByContractor: true},
			{Amount: 400, PaidByContractor: true, IsPayoutDiscount: true},
			{Amount: 500, PaidByContractor: true, IsPayoutAddition: true},
		},
	}
	assert.Equal(t, 850.0, JobProfit(job, models.GeneralSettings{}))
}

func TestDecimalSumsAreExact(t *testing.T) {
	invoices := []models.JobInvoice{{Amount: 0.1}, {Amount: 0.2}}
	assert.Equal(t, 0.3, MaterialCost(invoices))
}

func TestMaterialUsage(t *testing.T) {
	job := models.Job{InitialValue: 2000, Invoices: []models.JobInvoice{{Amount: 300}, {Amount: 200}}}
	assert.Equal(t, 25.0, MaterialUsage(job))

	job.InitialValue = 0
	assert.Equal(t, 0.0, MaterialUsage(job))
}

func TestProductionDayCount(t *testing.T) {
	days := []models.ProductionDay{
		{Date: "2024-08-12", DayType: models.DayFull},
		{Date: "2024-08-13", DayType: models.DayHalf},
		{Date: "2024-08-14", DayType: models.DayFull},
	}
	assert.Equal(t, 2.5, ProductionDayCount(days))
	assert.Equal(t, 0.0, ProductionDayCount(nil))
}

func TestSummarize(t *testing.T) {
	job := models.Job{
		ID:           "job-1",
		InitialValue: 1000,
		Adjustments:  []models.Adjustment{{Type: models.AdjustmentTime, Value: 2}},
		Invoices: []models.JobInvoice{
			{Amount: 100, IsPayoutDiscount: true},
			{Amount: 50, PaidByContractor: true},
		},
		ProductionDays: []models.ProductionDay{
			{Date: "2024-08-12", DayType: models.DayFull},
			{Date: "2024-08-13", DayType: models.DayFull},
			{Date: "2024-08-14", DayType: models.DayHalf},
			{Date: "2024-08-15", DayType: models.DayHalf},
		},
	}
	settings := models.GeneralSettings{
		HourlyRate:                  50,
		DailyPayTarget:              300,
		IdealMaterialCostPercentage: 15,
		SharePercentage:             10,
		TaxRate:                     20,
	}

	s := Summarize(job, settings)
	assert.Equal(t, "job-1", s.JobID)
	assert.Equal(t, 100.0, s.TotalAdjustments)
	assert.Equal(t, 1000.0, s.Payout)
	assert.Equal(t, 1000.0, s.Profit)
	assert.Equal(t, 150.0, s.MaterialCost)
	assert.Equal(t, 50.0, s.ContractorCost)
	assert.Equal(t, 15.0, s.MaterialUsage)
	assert.Equal(t, 150.0, s.IdealMaterialCost)
	assert.Equal(t, 3.0, s.ProductionDays)
	assert.InDelta(t, 333.33, s.DailyPay, 0.01)
	assert.True(t, s.MeetsDailyTarget)
	assert.Equal(t, 100.0, s.Share)
	assert.Equal(t, 200.0, s.Tax)
}

func TestSummarize_NoProductionDays(t *testing.T) {
	s := Summarize(models.Job{InitialValue: 500}, models.GeneralSettings{DailyPayTarget: 100})
	assert.Equal(t, 0.0, s.DailyPay)
	assert.False(t, s.MeetsDailyTarget)
}

func TestMonthlyTotals(t *testing.T) {
	at := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
		return &v
	}
	jobs := []models.Job{
		{InitialValue: 1000, FinalizationDate: at(2024, time.March, 3), Deadline: at(2024, time.February, 20)},
		{InitialValue: 500, Deadline: at(2024, time.March, 28), Invoices: []models.JobInvoice{{Amount: 100}}},
		{InitialValue: 700, Deadline: at(2024, time.July, 1)},
		{InitialValue: 900, Deadline: at(2023, time.March, 1)},
		{InitialValue: 300},
	}

	got := MonthlyTotals(jobs, models.GeneralSettings{}, 2024)
	require.Len(t, got, 12)
	assert.Equal(t, time.January, got[0].Month)
	assert.Equal(t, 0, got[1].JobCount)

	march := got[2]
	assert.Equal(t, 2, march.JobCount)
	assert.Equal(t, 1500.0, march.Revenue)
	assert.Equal(t, 1500.0, march.Payout)
	assert.Equal(t, 1400.0, march.Profit)
	assert.Equal(t, 100.0, march.MaterialCost)

	assert.Equal(t, 1, got[6].JobCount)
	assert.Equal(t, 700.0, got[6].Revenue)
}
