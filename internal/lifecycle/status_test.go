package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/brushwork/internal/models"
)

func TestNext(t *testing.T) {
	tests := []struct {
		in   models.JobStatus
		want models.JobStatus
		ok   bool
	}{
		{models.StatusNotStarted, models.StatusInProgress, true},
		{models.StatusInProgress, models.StatusComplete, true},
		{models.StatusComplete, models.StatusOpenPayment, true},
		{models.StatusOpenPayment, models.StatusFinalized, true},
		{models.StatusFinalized, "", false},
		{"Archived", "", false},
	}
	for _, tt := range tests {
		got, ok := Next(tt.in)
		assert.Equal(t, tt.want, got, "Next(%q)", tt.in)
		assert.Equal(t, tt.ok, ok, "Next(%q) ok", tt.in)
	}
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]models.JobStatus{
		"Not Started":   models.StatusNotStarted,
		" in progress ": models.StatusInProgress,
		"open_payment":  models.StatusOpenPayment,
		"OPEN-PAYMENT":  models.StatusOpenPayment,
		"finalized":     models.StatusFinalized,
	} {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("done")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransition(t *testing.T) {
	got, err := Transition(models.StatusNotStarted, models.StatusComplete)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got)

	got, err = Transition(models.StatusComplete, models.StatusComplete)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got)

	_, err = Transition(models.StatusOpenPayment, models.StatusInProgress)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, models.StatusOpenPayment, ite.From)
	assert.Equal(t, models.StatusInProgress, ite.To)

	_, err = Transition("Paused", models.StatusComplete)
	assert.ErrorIs(t, err, ErrUnknownStatus)
	_, err = Transition(models.StatusComplete, "Paused")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestTransition_EveryBackwardMoveRejected(t *testing.T) {
	for i, from := range Sequence {
		for j, to := range Sequence {
			_, err := Transition(from, to)
			if j < i {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			} else {
				assert.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}
}
