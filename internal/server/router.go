// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/brushwork/auth"
	"github.com/diewo77/brushwork/httpx"
	"github.com/diewo77/brushwork/internal/handlers"
	"github.com/diewo77/brushwork/internal/middleware"
	"github.com/diewo77/brushwork/internal/obs"
	"github.com/diewo77/brushwork/internal/services"
	"github.com/diewo77/brushwork/internal/store"
)

// Deps are the collaborators the routes need. Lifecycle and Payroll default to
// services built on DB.
type Deps struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Lifecycle *services.LifecycleService
	Payroll   *services.PayrollService
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	st := store.New(d.DB)
	if d.Lifecycle == nil {
		d.Lifecycle = services.NewLifecycleService(st, log)
	}
	if d.Payroll == nil {
		d.Payroll = services.NewPayrollService(st, log)
	}

	// RequireAuth rejects sessions of deleted users.
	auth.SetUserVerifier(st.UserExists)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(obs.RequestLogger(log))
	r.Use(withRecover(log))
	r.Use(obs.MetricsMiddleware)
	r.Use(middleware.Prefs)
	r.Use(auth.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			log.Warn("health check failed", zap.Error(err))
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	ah := handlers.NewAuthHandler(st, log)
	r.Post("/signup", ah.Signup)
	r.Post("/login", ah.Login)
	r.Post("/logout", ah.Logout)

	sh := handlers.NewSettingsHandler(st, log)
	jh := handlers.NewJobHandler(st, d.Lifecycle, log)
	ph := handlers.NewPayrollHandler(d.Payroll, log)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/settings", sh.Get)
		r.Put("/settings", sh.Put)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", jh.List)
			r.Post("/", jh.Create)
			r.Post("/open-payment", jh.OpenPayment)
			r.Post("/finalize", jh.Finalize)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", jh.Get)
				r.Patch("/", jh.Update)
				r.Delete("/", jh.Delete)
				r.Get("/financials", jh.Financials)
				r.Post("/status", jh.ChangeStatus)
				r.Post("/advance", jh.Advance)
				r.Post("/invoices", jh.AddInvoice)
				r.Delete("/invoices/{invoiceID}", jh.DeleteInvoice)
				r.Post("/adjustments", jh.AddAdjustment)
				r.Delete("/adjustments/{adjustmentID}", jh.DeleteAdjustment)
				r.Put("/production-days", jh.SetProductionDays)
			})
		})

		r.Get("/stats/monthly", ph.Monthly)

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/preview", ph.Preview)
			r.Get("/reports", ph.List)
			r.Post("/reports", ph.Generate)
			r.Route("/reports/{id}", func(r chi.Router) {
				r.Get("/", ph.Get)
				r.Delete("/", ph.Delete)
				r.Get("/message", ph.Message)
				r.Get("/export", ph.Export)
				r.Post("/send", ph.Send)
			})
		})
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics" && r.URL.Path != "/health"
		}),
	)
}

func withRecover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", chimw.GetReqID(r.Context())),
						zap.Stack("stack"),
					)
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
