// Package handlers exposes the JSON HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/brushwork/auth"
	"github.com/diewo77/brushwork/httpx"
	"github.com/diewo77/brushwork/internal/export"
	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/mail"
	"github.com/diewo77/brushwork/internal/services"
	"github.com/diewo77/brushwork/internal/store"
	"github.com/diewo77/brushwork/validation"
)

// failWith maps a domain error to its status and code. Unknown errors are
// logged and answered with 500.
func failWith(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, notFoundCode string) {
	var inel *lifecycle.IneligibleJobsError
	switch {
	case errors.As(err, &inel):
		httpx.Fail(w, r, http.StatusConflict, "jobs_not_eligible", map[string]any{"job_ids": inel.JobIDs, "required_status": inel.Want})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		httpx.Fail(w, r, http.StatusConflict, "invalid_transition", nil)
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		httpx.Fail(w, r, http.StatusBadRequest, "validation_failed", validation.Violations{"status": "invalid_choice"})
	case errors.Is(err, services.ErrNoJobsSelected):
		httpx.Fail(w, r, http.StatusBadRequest, "no_jobs_selected", nil)
	case errors.Is(err, services.ErrReportAlreadyGenerated):
		httpx.Fail(w, r, http.StatusConflict, "payroll_already_generated", nil)
	case errors.Is(err, services.ErrGenerationInProgress):
		httpx.Fail(w, r, http.StatusConflict, "payroll_in_progress", nil)
	case errors.Is(err, export.ErrUnsupportedFormat):
		httpx.Fail(w, r, http.StatusBadRequest, "unsupported_format", nil)
	case errors.Is(err, mail.ErrNoRecipients):
		httpx.Fail(w, r, http.StatusBadRequest, "no_recipients", nil)
	case errors.Is(err, store.ErrNotFound):
		if notFoundCode == "" {
			notFoundCode = "not_found"
		}
		httpx.Fail(w, r, http.StatusNotFound, notFoundCode, nil)
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.Fail(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

func currentUser(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// decode reads the body and answers 400 invalid_json on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.Decode(r, dst); err != nil {
		httpx.Fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
