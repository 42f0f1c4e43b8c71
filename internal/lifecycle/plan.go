package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/brushwork/internal/models"
)

// ErrIneligibleJobs matches any *IneligibleJobsError.
var ErrIneligibleJobs = errors.New("jobs not eligible")

// IneligibleJobsError lists the selected jobs whose status does not allow the
// requested batch operation.
type IneligibleJobsError struct {
	Op     string
	Want   models.JobStatus
	JobIDs []string
}

func (e *IneligibleJobsError) Error() string {
	return fmt.Sprintf("%s requires status %q; not eligible: %s", e.Op, e.Want, strings.Join(e.JobIDs, ", "))
}

func (e *IneligibleJobsError) Is(target error) bool {
	return target == ErrIneligibleJobs
}

// JobUpdate is a partial update for one job. Nil fields are left untouched.
type JobUpdate struct {
	JobID            string
	Status           models.JobStatus
	Deadline         *time.Time
	FinalizationDate *time.Time
}

// Fields renders the update as a column map.
func (u JobUpdate) Fields() map[string]any {
	fields := map[string]any{"status": u.Status}
	if u.Deadline != nil {
		fields["deadline"] = *u.Deadline
	}
	if u.FinalizationDate != nil {
		fields["finalization_date"] = *u.FinalizationDate
	}
	return fields
}

// PlanStatusChange validates the move and stamps the deadline with now the
// first time the job reaches Complete or later. Re-entering a completed status
// keeps the recorded deadline.
func PlanStatusChange(job models.Job, requested models.JobStatus, now time.Time) (JobUpdate, error) {
	next, err := Transition(job.Status, requested)
	if err != nil {
		return JobUpdate{}, err
	}
	u := JobUpdate{JobID: job.ID, Status: next}
	if !completed(job.Status) && completed(next) {
		stamp := now
		u.Deadline = &stamp
	}
	return u, nil
}

// PlanCreation plans the initial status of a new job as a move from Not
// Started, so a job created as Complete or later carries a deadline. A job
// created as Finalized is also finalized on now's UTC day.
func PlanCreation(status models.JobStatus, now time.Time) (JobUpdate, error) {
	if status == "" {
		status = models.StatusNotStarted
	}
	u, err := PlanStatusChange(models.Job{Status: models.StatusNotStarted}, status, now)
	if err != nil {
		return JobUpdate{}, err
	}
	if u.Status == models.StatusFinalized {
		day := utcDay(now)
		u.FinalizationDate = &day
	}
	return u, nil
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PlanAdvance moves the job to the next status in Sequence.
func PlanAdvance(job models.Job, now time.Time) (JobUpdate, error) {
	next, ok := Next(job.Status)
	if !ok {
		if !Valid(job.Status) {
			return JobUpdate{}, fmt.Errorf("%w: %q", ErrUnknownStatus, job.Status)
		}
		return JobUpdate{}, &InvalidTransitionError{From: job.Status, To: job.Status}
	}
	return PlanStatusChange(job, next, now)
}

// planBatch builds one update per job when every job sits at want.
func planBatch(op string, jobs []models.Job, want models.JobStatus, build func(models.Job) JobUpdate) ([]JobUpdate, error) {
	var bad []string
	updates := make([]JobUpdate, 0, len(jobs))
	for _, j := range jobs {
		if j.Status != want {
			bad = append(bad, j.ID)
			continue
		}
		updates = append(updates, build(j))
	}
	if len(bad) > 0 {
		return nil, &IneligibleJobsError{Op: op, Want: want, JobIDs: bad}
	}
	return updates, nil
}

// PlanFinalize closes the payment cycle of jobs awaiting payment. The
// finalization date is truncated to the calendar day in UTC.
func PlanFinalize(jobs []models.Job, date time.Time) ([]JobUpdate, error) {
	day := utcDay(date)
	return planBatch("finalize", jobs, models.StatusOpenPayment, func(j models.Job) JobUpdate {
		at := day
		return JobUpdate{JobID: j.ID, Status: models.StatusFinalized, FinalizationDate: &at}
	})
}

// PlanOpenPayment moves completed jobs to Open Payment.
func PlanOpenPayment(jobs []models.Job) ([]JobUpdate, error) {
	return planBatch("open payment", jobs, models.StatusComplete, func(j models.Job) JobUpdate {
		return JobUpdate{JobID: j.ID, Status: models.StatusOpenPayment}
	})
}
