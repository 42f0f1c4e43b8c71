package models

import "time"

// AdjustmentType classifies a manual correction to a job's value.
type AdjustmentType string

const (
	AdjustmentTime     AdjustmentType = "Time"
	AdjustmentMaterial AdjustmentType = "Material"
	AdjustmentGeneral  AdjustmentType = "General"
)

// Valid reports whether t is one of the known adjustment types.
func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentTime, AdjustmentMaterial, AdjustmentGeneral:
		return true
	}
	return false
}

// Adjustment is a signed correction to a job's value. Time adjustments count hours
// and are priced with HourlyRate, or the global rate when HourlyRate is nil.
type Adjustment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     string    `gorm:"size:36;index;not null" json:"job_id"`

	Type        AdjustmentType `gorm:"size:20;not null" json:"type"`
	Value       float64        `gorm:"not null;default:0" json:"value"`
	HourlyRate  *float64       `json:"hourly_rate,omitempty"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
}
