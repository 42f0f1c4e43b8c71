package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/brushwork/internal/lifecycle"
)

func sampleInput() lifecycle.ReportInput {
	done := time.Date(2024, time.August, 13, 16, 0, 0, 0, time.UTC)
	return lifecycle.ReportInput{
		Jobs: []lifecycle.ReportJob{
			{ID: "a", Title: "Facade <north>", ClientName: "Martin", WorkOrderNumber: "WO-7", Deadline: &done, Payout: 1060, MaterialUsage: 12.5, Notes: "two coats"},
			{ID: "b", Title: "Hallway", ClientName: "Dupont", Payout: 450},
		},
		CurrentDate:  time.Date(2024, time.August, 14, 10, 0, 0, 0, time.UTC),
		WeekNumber:   33,
		StartDate:    time.Date(2024, time.August, 12, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, time.August, 18, 23, 59, 59, 0, time.UTC),
		BusinessName: "Brush & Co",
		TotalPayout:  1510,
	}
}

func TestCompose(t *testing.T) {
	msg, err := Compose(sampleInput(), "en")
	require.NoError(t, err)

	assert.Equal(t, "Payroll report - week 33 (2024-08-12 - 2024-08-18)", msg.Subject)
	assert.Contains(t, msg.Body, "Facade &lt;north&gt;")
	assert.Contains(t, msg.Body, "Hallway")
	assert.Contains(t, msg.Body, "1060.00")
	assert.Contains(t, msg.Body, "12.5 %")
	assert.Contains(t, msg.Body, "2024-08-13")
	assert.Contains(t, msg.Body, "two coats")
	assert.Contains(t, msg.Body, "Total payout")
	assert.Contains(t, msg.Body, "1510.00")
	assert.Contains(t, msg.Body, "Brush &amp; Co")
	assert.NotContains(t, msg.Body, "<img")
}

func TestCompose_French(t *testing.T) {
	msg, err := Compose(sampleInput(), "fr")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.Subject, "Rapport de paie - semaine 33"))
	assert.Contains(t, msg.Body, "Chantier")
	assert.Contains(t, msg.Body, "Total à verser")
}

func TestCompose_Logo(t *testing.T) {
	in := sampleInput()
	in.BusinessLogoURL = "https://example.test/logo.png"
	msg, err := Compose(in, "en")
	require.NoError(t, err)
	assert.Contains(t, msg.Body, `<img src="https://example.test/logo.png"`)
}

func TestLabels_UnknownLanguage(t *testing.T) {
	assert.Equal(t, "Chantier", Labels("de").Job)
}
