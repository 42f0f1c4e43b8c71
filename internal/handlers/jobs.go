package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/httpx"
	"github.com/diewo77/brushwork/internal/financials"
	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/models"
	"github.com/diewo77/brushwork/internal/services"
	"github.com/diewo77/brushwork/internal/store"
	"github.com/diewo77/brushwork/validation"
)

type JobHandler struct {
	store     *store.Store
	lifecycle *services.LifecycleService
	log       *zap.Logger
}

func NewJobHandler(st *store.Store, lc *services.LifecycleService, log *zap.Logger) *JobHandler {
	return &JobHandler{store: st, lifecycle: lc, log: orNop(log)}
}

// jobInput carries the editable job fields. Nil pointers are left untouched on
// update and stored as zero values on create.
type jobInput struct {
	Title             *string                `json:"title"`
	ClientName        *string                `json:"client_name"`
	Address           *string                `json:"address"`
	QuoteNumber       *string                `json:"quote_number"`
	WorkOrderNumber   *string                `json:"work_order_number"`
	Notes             *string                `json:"notes"`
	StartDate         *string                `json:"start_date"`
	InitialValue      *float64               `json:"initial_value"`
	Budget            *float64               `json:"budget"`
	IsFixedPay        *bool                  `json:"is_fixed_pay"`
	IdealMaterialCost *float64               `json:"ideal_material_cost"`
	IdealNumberOfDays *float64               `json:"ideal_number_of_days"`
	ProductionDays    []models.ProductionDay `json:"production_days"`
}

type createJobInput struct {
	jobInput
	Status      string            `json:"status"`
	Invoices    []invoiceInput    `json:"invoices"`
	Adjustments []adjustmentInput `json:"adjustments"`
}

type invoiceInput struct {
	Amount           float64 `json:"amount"`
	Date             string  `json:"date"`
	Origin           string  `json:"origin"`
	Description      string  `json:"description"`
	IsPayoutDiscount bool    `json:"is_payout_discount"`
	IsPayoutAddition bool    `json:"is_payout_addition"`
	PaidByContractor bool    `json:"paid_by_contractor"`
}

type adjustmentInput struct {
	Type        string   `json:"type"`
	Value       float64  `json:"value"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Description string   `json:"description"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func (in jobInput) validate(v validation.Violations, creating bool) {
	if creating || in.Title != nil {
		validation.Required("title", str(in.Title), v)
	}
	if in.StartDate != nil {
		validation.Date("start_date", *in.StartDate, v)
	}
	for field, p := range map[string]*float64{
		"initial_value":        in.InitialValue,
		"budget":               in.Budget,
		"ideal_material_cost":  in.IdealMaterialCost,
		"ideal_number_of_days": in.IdealNumberOfDays,
	} {
		if p != nil {
			validation.NonNegativeFloat(field, *p, v)
		}
	}
	validateDays(in.ProductionDays, v)
}

func validateDays(days []models.ProductionDay, v validation.Violations) {
	for _, d := range days {
		validation.Date("production_days", d.Date, v)
		if d.Date == "" {
			v["production_days"] = "invalid_date"
		}
		if d.DayType != "" && d.DayType != models.DayFull && d.DayType != models.DayHalf {
			v["production_days"] = "invalid_choice"
		}
	}
}

// fields renders the set fields as a column map.
func (in jobInput) fields() map[string]any {
	f := map[string]any{}
	set := func(col string, p *string) {
		if p != nil {
			f[col] = strings.TrimSpace(*p)
		}
	}
	set("title", in.Title)
	set("client_name", in.ClientName)
	set("address", in.Address)
	set("quote_number", in.QuoteNumber)
	set("work_order_number", in.WorkOrderNumber)
	set("notes", in.Notes)
	if in.StartDate != nil {
		f["start_date"] = parseDay(*in.StartDate)
	}
	num := func(col string, p *float64) {
		if p != nil {
			f[col] = *p
		}
	}
	num("initial_value", in.InitialValue)
	num("budget", in.Budget)
	num("ideal_material_cost", in.IdealMaterialCost)
	num("ideal_number_of_days", in.IdealNumberOfDays)
	if in.IsFixedPay != nil {
		f["is_fixed_pay"] = *in.IsFixedPay
	}
	return f
}

func (in invoiceInput) validate(prefix string, v validation.Violations) {
	validation.Date(prefix+"date", in.Date, v)
}

func (in invoiceInput) model() models.JobInvoice {
	return models.JobInvoice{
		Amount:           in.Amount,
		Date:             parseDay(in.Date),
		Origin:           strings.TrimSpace(in.Origin),
		Description:      strings.TrimSpace(in.Description),
		IsPayoutDiscount: in.IsPayoutDiscount,
		IsPayoutAddition: in.IsPayoutAddition,
		PaidByContractor: in.PaidByContractor,
	}
}

var adjustmentTypes = []string{string(models.AdjustmentTime), string(models.AdjustmentMaterial), string(models.AdjustmentGeneral)}

func (in adjustmentInput) validate(prefix string, v validation.Violations) {
	validation.OneOf(prefix+"type", in.Type, adjustmentTypes, v)
	if in.HourlyRate != nil {
		validation.NonNegativeFloat(prefix+"hourly_rate", *in.HourlyRate, v)
	}
}

func (in adjustmentInput) model() models.Adjustment {
	return models.Adjustment{
		Type:        models.AdjustmentType(in.Type),
		Value:       in.Value,
		HourlyRate:  in.HourlyRate,
		Description: strings.TrimSpace(in.Description),
	}
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	f := store.JobFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := lifecycle.ParseStatus(raw)
		if err != nil {
			failWith(w, r, h.log, err, "")
			return
		}
		f.Status = st
	}
	jobs, err := h.store.ListJobs(r.Context(), currentUser(r), f)
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": jobs, "total": len(jobs)})
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in createJobInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	in.validate(v, true)
	var status models.JobStatus
	if in.Status != "" {
		st, err := lifecycle.ParseStatus(in.Status)
		if err != nil {
			v["status"] = "invalid_choice"
		}
		status = st
	}
	for _, inv := range in.Invoices {
		inv.validate("invoices.", v)
	}
	for _, adj := range in.Adjustments {
		adj.validate("adjustments.", v)
	}
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}

	job := &models.Job{
		Title:           str(in.Title),
		ClientName:      str(in.ClientName),
		Address:         str(in.Address),
		QuoteNumber:     str(in.QuoteNumber),
		WorkOrderNumber: str(in.WorkOrderNumber),
		Notes:           str(in.Notes),
		Status:          status,
		ProductionDays:  in.ProductionDays,
		Invoices:        make([]models.JobInvoice, 0, len(in.Invoices)),
		Adjustments:     make([]models.Adjustment, 0, len(in.Adjustments)),
	}
	if in.StartDate != nil {
		job.StartDate = parseDay(*in.StartDate)
	}
	if in.InitialValue != nil {
		job.InitialValue = *in.InitialValue
	}
	if in.Budget != nil {
		job.Budget = *in.Budget
	}
	if in.IsFixedPay != nil {
		job.IsFixedPay = *in.IsFixedPay
	}
	if in.IdealMaterialCost != nil {
		job.IdealMaterialCost = *in.IdealMaterialCost
	}
	if in.IdealNumberOfDays != nil {
		job.IdealNumberOfDays = *in.IdealNumberOfDays
	}
	for _, inv := range in.Invoices {
		job.Invoices = append(job.Invoices, inv.model())
	}
	for _, adj := range in.Adjustments {
		job.Adjustments = append(job.Adjustments, adj.model())
	}
	if err := h.lifecycle.Create(r.Context(), currentUser(r), job); err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusCreated, job)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

// Update patches descriptive and money fields. Status changes go through
// ChangeStatus so the deadline rule applies.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in jobInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	in.validate(v, false)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	fields := in.fields()
	if in.ProductionDays != nil {
		if _, err := h.store.SetProductionDays(r.Context(), currentUser(r), chi.URLParam(r, "id"), in.ProductionDays); err != nil {
			failWith(w, r, h.log, err, "job_not_found")
			return
		}
	}
	job, err := h.store.UpdateJob(r.Context(), currentUser(r), chi.URLParam(r, "id"), fields)
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteJob(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobHandler) Financials(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r)
	job, err := h.store.GetJob(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	settings, err := h.store.GetSettings(r.Context(), uid)
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, financials.Summarize(*job, settings))
}

func (h *JobHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &in) {
		return
	}
	status, err := lifecycle.ParseStatus(in.Status)
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	job, err := h.lifecycle.ChangeStatus(r.Context(), currentUser(r), chi.URLParam(r, "id"), status)
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) Advance(w http.ResponseWriter, r *http.Request) {
	job, err := h.lifecycle.Advance(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) AddInvoice(w http.ResponseWriter, r *http.Request) {
	var in invoiceInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	in.validate("", v)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	inv := in.model()
	if err := h.store.AddInvoice(r.Context(), currentUser(r), chi.URLParam(r, "id"), &inv); err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *JobHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteInvoice(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "invoiceID")); err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobHandler) AddAdjustment(w http.ResponseWriter, r *http.Request) {
	var in adjustmentInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	in.validate("", v)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	adj := in.model()
	if err := h.store.AddAdjustment(r.Context(), currentUser(r), chi.URLParam(r, "id"), &adj); err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusCreated, adj)
}

func (h *JobHandler) DeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAdjustment(r.Context(), currentUser(r), chi.URLParam(r, "id"), chi.URLParam(r, "adjustmentID")); err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobHandler) SetProductionDays(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductionDays []models.ProductionDay `json:"production_days"`
	}
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	validateDays(in.ProductionDays, v)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	job, err := h.store.SetProductionDays(r.Context(), currentUser(r), chi.URLParam(r, "id"), in.ProductionDays)
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, job)
}

type batchInput struct {
	JobIDs           []string `json:"job_ids"`
	FinalizationDate string   `json:"finalization_date,omitempty"`
}

func (h *JobHandler) OpenPayment(w http.ResponseWriter, r *http.Request) {
	var in batchInput
	if !decode(w, r, &in) {
		return
	}
	n, err := h.lifecycle.MoveToOpenPayment(r.Context(), currentUser(r), in.JobIDs)
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": n})
}

// Finalize closes the selected jobs. The date defaults to today.
func (h *JobHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var in batchInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	validation.Date("finalization_date", in.FinalizationDate, v)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	date := time.Now()
	if d := parseDay(in.FinalizationDate); d != nil {
		date = *d
	}
	n, err := h.lifecycle.FinalizePayments(r.Context(), currentUser(r), in.JobIDs, date)
	if err != nil {
		failWith(w, r, h.log, err, "job_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": n})
}
