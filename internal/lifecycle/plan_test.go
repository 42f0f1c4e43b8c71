package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/brushwork/internal/models"
)

var now = time.Date(2024, time.August, 14, 15, 30, 0, 0, time.UTC)

func TestPlanStatusChange_StampsDeadlineOnce(t *testing.T) {
	job := models.Job{ID: "j1", Status: models.StatusInProgress}

	u, err := PlanStatusChange(job, models.StatusComplete, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, u.Status)
	require.NotNil(t, u.Deadline)
	assert.Equal(t, now, *u.Deadline)

	// apply and complete again
	job.Status = u.Status
	job.Deadline = u.Deadline
	later := now.Add(48 * time.Hour)
	u, err = PlanStatusChange(job, models.StatusComplete, later)
	require.NoError(t, err)
	assert.Nil(t, u.Deadline)
	assert.NotContains(t, u.Fields(), "deadline")
	assert.Equal(t, now, *job.Deadline)
}

func TestPlanStatusChange_SkippingToOpenPaymentStampsDeadline(t *testing.T) {
	u, err := PlanStatusChange(models.Job{ID: "j1", Status: models.StatusNotStarted}, models.StatusOpenPayment, now)
	require.NoError(t, err)
	require.NotNil(t, u.Deadline)
}

func TestPlanStatusChange_NoDeadlineBeforeComplete(t *testing.T) {
	u, err := PlanStatusChange(models.Job{ID: "j1", Status: models.StatusNotStarted}, models.StatusInProgress, now)
	require.NoError(t, err)
	assert.Nil(t, u.Deadline)
	assert.Equal(t, map[string]any{"status": models.StatusInProgress}, u.Fields())
}

func TestPlanStatusChange_RejectsBackward(t *testing.T) {
	_, err := PlanStatusChange(models.Job{ID: "j1", Status: models.StatusFinalized}, models.StatusComplete, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanCreation(t *testing.T) {
	u, err := PlanCreation("", now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, u.Status)
	assert.Nil(t, u.Deadline)

	u, err = PlanCreation(models.StatusInProgress, now)
	require.NoError(t, err)
	assert.Nil(t, u.Deadline)
	assert.Nil(t, u.FinalizationDate)

	u, err = PlanCreation(models.StatusComplete, now)
	require.NoError(t, err)
	require.NotNil(t, u.Deadline)
	assert.Equal(t, now, *u.Deadline)
	assert.Nil(t, u.FinalizationDate)

	u, err = PlanCreation(models.StatusFinalized, now)
	require.NoError(t, err)
	require.NotNil(t, u.Deadline)
	require.NotNil(t, u.FinalizationDate)
	assert.Equal(t, time.Date(2024, time.August, 14, 0, 0, 0, 0, time.UTC), *u.FinalizationDate)

	_, err = PlanCreation("Archived", now)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestPlanAdvance(t *testing.T) {
	u, err := PlanAdvance(models.Job{ID: "j1", Status: models.StatusInProgress}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, u.Status)
	assert.NotNil(t, u.Deadline)

	_, err = PlanAdvance(models.Job{ID: "j1", Status: models.StatusFinalized}, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = PlanAdvance(models.Job{ID: "j1", Status: "bogus"}, now)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestPlanFinalize(t *testing.T) {
	jobs := []models.Job{
		{ID: "a", Status: models.StatusOpenPayment},
		{ID: "b", Status: models.StatusOpenPayment},
	}
	date := time.Date(2024, time.August, 16, 23, 45, 0, 0, time.FixedZone("CEST", 2*60*60))

	updates, err := PlanFinalize(jobs, date)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	want := time.Date(2024, time.August, 16, 0, 0, 0, 0, time.UTC)
	for i, u := range updates {
		assert.Equal(t, jobs[i].ID, u.JobID)
		assert.Equal(t, models.StatusFinalized, u.Status)
		require.NotNil(t, u.FinalizationDate)
		assert.Equal(t, want, *u.FinalizationDate)
		assert.Nil(t, u.Deadline)
	}
	assert.Equal(t, map[string]any{
		"status":            models.StatusFinalized,
		"finalization_date": want,
	}, updates[0].Fields())
}

func TestPlanFinalize_IneligibleFailsWholeBatch(t *testing.T) {
	jobs := []models.Job{
		{ID: "a", Status: models.StatusOpenPayment},
		{ID: "b", Status: models.StatusComplete},
		{ID: "c", Status: models.StatusFinalized},
	}
	updates, err := PlanFinalize(jobs, now)
	assert.Nil(t, updates)
	require.ErrorIs(t, err, ErrIneligibleJobs)
	var ie *IneligibleJobsError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []string{"b", "c"}, ie.JobIDs)
	assert.Equal(t, models.StatusOpenPayment, ie.Want)
}

func TestPlanOpenPayment(t *testing.T) {
	updates, err := PlanOpenPayment([]models.Job{{ID: "a", Status: models.StatusComplete}})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, map[string]any{"status": models.StatusOpenPayment}, updates[0].Fields())

	_, err = PlanOpenPayment([]models.Job{{ID: "a", Status: models.StatusInProgress}})
	assert.ErrorIs(t, err, ErrIneligibleJobs)
}

func TestPlanOpenPayment_EmptySelection(t *testing.T) {
	updates, err := PlanOpenPayment(nil)
	require.NoError(t, err)
	assert.Empty(t, updates)
}
