package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/models"
	"github.com/diewo77/brushwork/internal/obs"
	"github.com/diewo77/brushwork/internal/policy"
	"github.com/diewo77/brushwork/internal/store"
)

// LifecycleService loads jobs, plans status changes and applies the plans.
type LifecycleService struct {
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewLifecycleService(st *store.Store, log *zap.Logger) *LifecycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{store: st, log: log, now: defaultClock}
}

// WithClock replaces the time source used for deadline stamping.
func (s *LifecycleService) WithClock(now func() time.Time) *LifecycleService {
	s.now = now
	return s
}

// Create stores a new job. Its initial status is planned as a move from Not
// Started, so the deadline and finalization rules hold for jobs created late
// in the cycle.
func (s *LifecycleService) Create(ctx context.Context, userID uint, job *models.Job) (err error) {
	ctx, span := startSpan(ctx, "lifecycle.create", userID, attribute.String("job.status", string(job.Status)))
	defer func() { endSpan(span, err); s.record("create", err) }()

	u, err := lifecycle.PlanCreation(job.Status, s.now())
	if err != nil {
		return err
	}
	job.Status = u.Status
	if u.Deadline != nil {
		job.Deadline = u.Deadline
	}
	if u.FinalizationDate != nil {
		job.FinalizationDate = u.FinalizationDate
	}
	return s.store.CreateJob(ctx, userID, job)
}

// ChangeStatus moves one job to requested and returns the stored result.
func (s *LifecycleService) ChangeStatus(ctx context.Context, userID uint, jobID string, requested models.JobStatus) (job *models.Job, err error) {
	ctx, span := startSpan(ctx, "lifecycle.change_status", userID,
		attribute.String("job.id", jobID), attribute.String("job.status", string(requested)))
	defer func() { endSpan(span, err); s.record("change_status", err) }()

	current, err := s.store.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	u, err := lifecycle.PlanStatusChange(*current, requested, s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, current, u)
}

// Advance moves one job to the next status.
func (s *LifecycleService) Advance(ctx context.Context, userID uint, jobID string) (job *models.Job, err error) {
	ctx, span := startSpan(ctx, "lifecycle.advance", userID, attribute.String("job.id", jobID))
	defer func() { endSpan(span, err); s.record("advance", err) }()

	current, err := s.store.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	u, err := lifecycle.PlanAdvance(*current, s.now())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, current, u)
}

func (s *LifecycleService) apply(ctx context.Context, userID uint, current *models.Job, u lifecycle.JobUpdate) (*models.Job, error) {
	if err := s.store.ApplyJobUpdates(ctx, userID, []lifecycle.JobUpdate{u}); err != nil {
		return nil, err
	}
	s.log.Info("job status changed",
		zap.Uint("user_id", userID),
		zap.String("job_id", current.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(u.Status)),
		zap.Bool("deadline_stamped", u.Deadline != nil),
	)
	return s.store.GetJob(ctx, userID, current.ID)
}

// MoveToOpenPayment moves every selected job from Complete to Open Payment.
// Either all jobs move or none do.
func (s *LifecycleService) MoveToOpenPayment(ctx context.Context, userID uint, jobIDs []string) (n int, err error) {
	ctx, span := startSpan(ctx, "lifecycle.open_payment", userID, attribute.Int("jobs.selected", len(jobIDs)))
	defer func() { endSpan(span, err); s.record("open_payment", err) }()

	jobs, err := s.selected(ctx, userID, jobIDs)
	if err != nil {
		return 0, err
	}
	updates, err := lifecycle.PlanOpenPayment(jobs)
	if err != nil {
		return 0, err
	}
	return s.applyBatch(ctx, userID, "open payment", updates)
}

// FinalizePayments finalizes every selected Open Payment job on date.
// Either all jobs are finalized or none are.
func (s *LifecycleService) FinalizePayments(ctx context.Context, userID uint, jobIDs []string, date time.Time) (n int, err error) {
	ctx, span := startSpan(ctx, "lifecycle.finalize", userID, attribute.Int("jobs.selected", len(jobIDs)))
	defer func() { endSpan(span, err); s.record("finalize", err) }()

	jobs, err := s.selected(ctx, userID, jobIDs)
	if err != nil {
		return 0, err
	}
	updates, err := lifecycle.PlanFinalize(jobs, date)
	if err != nil {
		return 0, err
	}
	return s.applyBatch(ctx, userID, "finalize", updates)
}

func (s *LifecycleService) selected(ctx context.Context, userID uint, jobIDs []string) ([]models.Job, error) {
	if len(jobIDs) == 0 {
		return nil, ErrNoJobsSelected
	}
	jobs, err := s.store.GetJobsByIDs(ctx, userID, jobIDs)
	if err != nil {
		return nil, err
	}
	if foreign := policy.ForeignJobs(userID, jobs); len(foreign) > 0 {
		return nil, fmt.Errorf("%w: jobs %s", store.ErrNotFound, strings.Join(foreign, ", "))
	}
	return jobs, nil
}

func (s *LifecycleService) applyBatch(ctx context.Context, userID uint, op string, updates []lifecycle.JobUpdate) (int, error) {
	if err := s.store.ApplyJobUpdates(ctx, userID, updates); err != nil {
		s.log.Error("batch update failed",
			zap.String("op", op), zap.Uint("user_id", userID), zap.Int("jobs", len(updates)), zap.Error(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("batch update applied", zap.String("op", op), zap.Uint("user_id", userID), zap.Int("jobs", len(updates)))
	return len(updates), nil
}

func (s *LifecycleService) record(op string, err error) {
	obs.RecordLifecycle(op, outcome(err))
}

// outcome classifies an error for the lifecycle counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrUnknownStatus),
		errors.Is(err, lifecycle.ErrIneligibleJobs),
		errors.Is(err, ErrNoJobsSelected),
		errors.Is(err, store.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}
