package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/i18n"
	"github.com/diewo77/brushwork/internal/blob"
	"github.com/diewo77/brushwork/internal/export"
	"github.com/diewo77/brushwork/internal/financials"
	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/mail"
	"github.com/diewo77/brushwork/internal/models"
	"github.com/diewo77/brushwork/internal/obs"
	"github.com/diewo77/brushwork/internal/policy"
	"github.com/diewo77/brushwork/internal/report"
	"github.com/diewo77/brushwork/internal/store"
)

// PayrollService generates weekly payroll reports and hands them to the
// report consumers: message, exports, archive and e-mail.
type PayrollService struct {
	store  *store.Store
	log    *zap.Logger
	now    func() time.Time
	locker Locker
	blobs  blob.Store
	mailer mail.Mailer
}

type PayrollOption func(*PayrollService)

// WithLocker serializes generation of the same report across processes.
func WithLocker(l Locker) PayrollOption { return func(s *PayrollService) { s.locker = l } }

// WithArchive stores the PDF of every generated report.
func WithArchive(b blob.Store) PayrollOption { return func(s *PayrollService) { s.blobs = b } }

func WithMailer(m mail.Mailer) PayrollOption { return func(s *PayrollService) { s.mailer = m } }

func WithClock(now func() time.Time) PayrollOption { return func(s *PayrollService) { s.now = now } }

func NewPayrollService(st *store.Store, log *zap.Logger, opts ...PayrollOption) *PayrollService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &PayrollService{store: st, log: log, now: defaultClock}
	for _, o := range opts {
		o(s)
	}
	if s.mailer == nil {
		s.mailer = &mail.LogMailer{Log: log}
	}
	return s
}

// Preview is the report that Generate would store right now.
type Preview struct {
	Report           models.PayrollReport  `json:"report"`
	Input            lifecycle.ReportInput `json:"input"`
	AlreadyGenerated bool                  `json:"already_generated"`
}

func (s *PayrollService) snapshot(ctx context.Context, userID uint, now time.Time) (models.PayrollReport, []models.Job, models.GeneralSettings, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return models.PayrollReport{}, nil, settings, err
	}
	jobs, err := s.store.ListJobs(ctx, userID, store.JobFilter{Status: models.StatusOpenPayment})
	if err != nil {
		return models.PayrollReport{}, nil, settings, err
	}
	return lifecycle.BuildPayrollReport(userID, jobs, settings, now), jobs, settings, nil
}

// Preview computes the current week's report without storing it.
func (s *PayrollService) Preview(ctx context.Context, userID uint) (p Preview, err error) {
	ctx, span := startSpan(ctx, "payroll.preview", userID)
	defer func() { endSpan(span, err) }()

	now := s.now()
	r, jobs, settings, err := s.snapshot(ctx, userID, now)
	if err != nil {
		return Preview{}, err
	}
	_, err = s.store.GetPayrollReport(ctx, userID, r.ID)
	switch {
	case err == nil:
		p.AlreadyGenerated = true
	case !errors.Is(err, store.ErrNotFound):
		return Preview{}, err
	}
	p.Report = r
	p.Input = lifecycle.BuildReportInput(r, jobs, settings, now)
	return p, nil
}

// Generate stores the current week's report. A second call in the same ISO
// week returns ErrReportAlreadyGenerated and writes nothing.
func (s *PayrollService) Generate(ctx context.Context, userID uint) (out *models.PayrollReport, err error) {
	ctx, span := startSpan(ctx, "payroll.generate", userID)
	defer func() {
		endSpan(span, err)
		obs.RecordPayroll(payrollOutcome(err))
	}()

	// The lock and the stored report must name the same week.
	now := s.now()
	w := lifecycle.WeekOf(now)
	id := lifecycle.ReportID(userID, w.Year, w.Number)
	span.SetAttributes(attribute.String("report.id", id))

	if s.locker != nil {
		unlock, ok, lerr := s.locker.TryLock(ctx, "payroll:"+id)
		switch {
		case lerr != nil:
			s.log.Warn("payroll lock unavailable, continuing without it", zap.String("report_id", id), zap.Error(lerr))
		case !ok:
			return nil, ErrGenerationInProgress
		default:
			defer unlock()
		}
	}

	r, jobs, settings, err := s.snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePayrollReport(ctx, &r); err != nil {
		if errors.Is(err, store.ErrReportExists) {
			return nil, ErrReportAlreadyGenerated
		}
		return nil, err
	}
	s.log.Info("payroll report generated",
		zap.String("report_id", r.ID),
		zap.Uint("user_id", userID),
		zap.Int("jobs", r.JobCount),
		zap.Float64("total_payout", r.TotalPayout),
	)
	s.archive(ctx, &r, jobs, settings, now)
	return &r, nil
}

func archiveKey(reportID string) string { return "payroll/" + reportID + ".pdf" }

// archive stores the report PDF. Failures are logged and do not fail generation.
func (s *PayrollService) archive(ctx context.Context, r *models.PayrollReport, jobs []models.Job, settings models.GeneralSettings, now time.Time) {
	if s.blobs == nil {
		return
	}
	in := lifecycle.BuildReportInput(*r, jobs, settings, now)
	pdf, err := export.PDF(in, i18n.Default)
	if err != nil {
		s.log.Error("render payroll pdf", zap.String("report_id", r.ID), zap.Error(err))
		return
	}
	key := archiveKey(r.ID)
	if err := s.blobs.Put(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), export.ContentType(export.FormatPDF)); err != nil {
		s.log.Error("archive payroll pdf", zap.String("report_id", r.ID), zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.SetArchiveKey(ctx, r.UserID, r.ID, key); err != nil {
		s.log.Error("record archive key", zap.String("report_id", r.ID), zap.Error(err))
		return
	}
	r.ArchiveKey = key
}

func (s *PayrollService) List(ctx context.Context, userID uint) ([]models.PayrollReport, error) {
	return s.store.ListPayrollReports(ctx, userID)
}

func (s *PayrollService) Get(ctx context.Context, userID uint, id string) (*models.PayrollReport, error) {
	return s.store.GetPayrollReport(ctx, userID, id)
}

// Delete removes a stored report so the week can be generated again.
func (s *PayrollService) Delete(ctx context.Context, userID uint, id string) error {
	if err := s.store.DeletePayrollReport(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info("payroll report deleted", zap.String("report_id", id), zap.Uint("user_id", userID))
	return nil
}

// Input assembles the consumer input of a stored report from the lines saved
// at generation. Reports stored without lines are rebuilt from the jobs still
// present.
func (s *PayrollService) Input(ctx context.Context, userID uint, id string) (lifecycle.ReportInput, *models.PayrollReport, error) {
	r, err := s.store.GetPayrollReport(ctx, userID, id)
	if err != nil {
		return lifecycle.ReportInput{}, nil, err
	}
	if !policy.Owns(userID, r) {
		return lifecycle.ReportInput{}, nil, store.ErrNotFound
	}
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return lifecycle.ReportInput{}, nil, err
	}
	var jobs []models.Job
	if len(r.Lines) == 0 && len(r.JobIDs) > 0 {
		if jobs, err = s.store.FindJobs(ctx, userID, r.JobIDs); err != nil {
			return lifecycle.ReportInput{}, nil, err
		}
	}
	return lifecycle.BuildReportInput(*r, jobs, settings, s.now()), r, nil
}

func (s *PayrollService) Compose(ctx context.Context, userID uint, id, lang string) (report.Message, error) {
	in, _, err := s.Input(ctx, userID, id)
	if err != nil {
		return report.Message{}, err
	}
	return report.Compose(in, lang)
}

// Export renders a stored report. PDFs come from the archive when one was kept.
func (s *PayrollService) Export(ctx context.Context, userID uint, id, format, lang string) (data []byte, err error) {
	ctx, span := startSpan(ctx, "payroll.export", userID,
		attribute.String("report.id", id), attribute.String("export.format", format))
	defer func() { endSpan(span, err) }()

	if format != export.FormatPDF && format != export.FormatXLSX {
		return nil, fmt.Errorf("%w %q", export.ErrUnsupportedFormat, format)
	}
	in, r, err := s.Input(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if format == export.FormatPDF && r.ArchiveKey != "" && s.blobs != nil && lang == i18n.Default {
		archived, aerr := s.readArchive(ctx, r.ArchiveKey)
		if aerr == nil {
			return archived, nil
		}
		s.log.Warn("archived pdf unavailable, rendering", zap.String("key", r.ArchiveKey), zap.Error(aerr))
	}
	return export.Render(format, in, lang)
}

func (s *PayrollService) readArchive(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Send e-mails the composed report to the recipients.
func (s *PayrollService) Send(ctx context.Context, userID uint, id string, to []string, lang string) (err error) {
	ctx, span := startSpan(ctx, "payroll.send", userID,
		attribute.String("report.id", id), attribute.Int("mail.recipients", len(to)))
	defer func() { endSpan(span, err) }()

	msg, err := s.Compose(ctx, userID, id, lang)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, to, msg); err != nil {
		return err
	}
	s.log.Info("payroll report sent", zap.String("report_id", id), zap.Int("recipients", len(to)))
	return nil
}

// MonthlyStats buckets the user's jobs by month of year.
func (s *PayrollService) MonthlyStats(ctx context.Context, userID uint, year int) ([]financials.MonthTotals, error) {
	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobs(ctx, userID, store.JobFilter{})
	if err != nil {
		return nil, err
	}
	return financials.MonthlyTotals(jobs, settings, year), nil
}

func payrollOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, ErrReportAlreadyGenerated), errors.Is(err, ErrGenerationInProgress):
		return "duplicate"
	default:
		return "error"
	}
}
