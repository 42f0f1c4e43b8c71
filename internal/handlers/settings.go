package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/brushwork/httpx"
	"github.com/diewo77/brushwork/internal/models"
	"github.com/diewo77/brushwork/internal/store"
	"github.com/diewo77/brushwork/validation"
)

type SettingsHandler struct {
	store *store.Store
	log   *zap.Logger
}

func NewSettingsHandler(st *store.Store, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{store: st, log: orNop(log)}
}

type settingsInput struct {
	HourlyRate                  float64 `json:"hourly_rate"`
	DailyPayTarget              float64 `json:"daily_pay_target"`
	IdealMaterialCostPercentage float64 `json:"ideal_material_cost_percentage"`
	SharePercentage             float64 `json:"share_percentage"`
	TaxRate                     float64 `json:"tax_rate"`
	BusinessName                string  `json:"business_name"`
	BusinessLogoURL             string  `json:"business_logo_url"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	gs, err := h.store.GetSettings(r.Context(), currentUser(r))
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, gs)
}

// Put replaces the settings. Missing numbers are stored as 0.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var in settingsInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	validation.NonNegativeFloat("hourly_rate", in.HourlyRate, v)
	validation.NonNegativeFloat("daily_pay_target", in.DailyPayTarget, v)
	validation.RangeFloat("ideal_material_cost_percentage", in.IdealMaterialCostPercentage, 0, 100, v)
	validation.RangeFloat("share_percentage", in.SharePercentage, 0, 100, v)
	validation.RangeFloat("tax_rate", in.TaxRate, 0, 100, v)
	if !v.Empty() {
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	gs, err := h.store.SaveSettings(r.Context(), currentUser(r), models.GeneralSettings{
		HourlyRate:                  in.HourlyRate,
		DailyPayTarget:              in.DailyPayTarget,
		IdealMaterialCostPercentage: in.IdealMaterialCostPercentage,
		SharePercentage:             in.SharePercentage,
		TaxRate:                     in.TaxRate,
		BusinessName:                strings.TrimSpace(in.BusinessName),
		BusinessLogoURL:             strings.TrimSpace(in.BusinessLogoURL),
	})
	if err != nil {
		failWith(w, r, h.log, err, "")
		return
	}
	httpx.JSON(w, http.StatusOK, gs)
}
