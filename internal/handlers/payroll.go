package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/httpx"
	"github.com/diewo77/brushwork/internal/export"
	"github.com/diewo77/brushwork/internal/middleware"
	"github.com/diewo77/brushwork/internal/services"
	"github.com/diewo77/brushwork/validation"
)

type PayrollHandler struct {
	payroll *services.PayrollService
	log     *zap.Logger
}

func NewPayrollHandler(svc *services.PayrollService, log *zap.Logger) *PayrollHandler {
	return &PayrollHandler{payroll: svc, log: orNop(log)}
}

func (h *PayrollHandler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.payroll.Preview(r.Context(), currentUser(r))
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) Generate(w http.ResponseWriter, r *http.Request) {
	rep, err := h.payroll.Generate(r.Context(), currentUser(r))
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusCreated, rep)
}

func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.payroll.List(r.Context(), currentUser(r))
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": reports, "total": len(reports)})
}

func (h *PayrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.payroll.Get(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		failWith(w, r, h.log, err, "report_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *PayrollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.payroll.Delete(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		failWith(w, r, h.log, err, "report_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Message returns the composed e-mail for a report without sending it.
func (h *PayrollHandler) Message(w http.ResponseWriter, r *http.Request) {
	msg, err := h.payroll.Compose(r.Context(), currentUser(r), chi.URLParam(r, "id"), middleware.LangFrom(r))
	if err != nil {
		failWith(w, r, h.log, err, "report_not_found")
		return
	}
	httpx.JSON(w, http.StatusOK, msg)
}

func (h *PayrollHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatPDF
	}
	id := chi.URLParam(r, "id")
	data, err := h.payroll.Export(r.Context(), currentUser(r), id, format, middleware.LangFrom(r))
	if err != nil {
		failWith(w, r, h.log, err, "report_not_found")
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="payroll-`+id+`.`+format+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("write export", zap.String("report_id", id), zap.Error(err))
	}
}

func (h *PayrollHandler) Send(w http.ResponseWriter, r *http.Request) {
	var in struct {
		To []string `json:"to"`
	}
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	for _, addr := range in.To {
		validation.Email("to", addr, v)
	}
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.payroll.Send(r.Context(), currentUser(r), id, in.To, middleware.LangFrom(r)); err != nil {
		failWith(w, r, h.log, err, "report_not_found")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"sent": len(in.To)})
}

// Monthly answers the chart buckets for ?year=, defaulting to the current year.
func (h *PayrollHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", validation.Violations{"year": "out_of_range"})
			return
		}
		year = y
	}
	stats, err := h.payroll.MonthlyStats(r.Context(), currentUser(r), year)
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"year": year, "months": stats})
}
