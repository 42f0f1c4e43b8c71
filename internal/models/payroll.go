package models

import (
	"time"

	"gorm.io/datatypes"
)

// PayrollReport is the weekly snapshot of jobs awaiting payment.
// The ID is derived from owner, year and week so a week can only be reported once.
type PayrollReport struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID     uint `gorm:"not null;uniqueIndex:idx_payroll_user_week,priority:1" json:"-"`
	Year       int  `gorm:"not null;uniqueIndex:idx_payroll_user_week,priority:2" json:"year"`
	WeekNumber int  `gorm:"not null;uniqueIndex:idx_payroll_user_week,priority:3" json:"week_number"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	SentDate  time.Time `gorm:"not null" json:"sent_date"`

	TotalPayout float64                    `gorm:"not null;default:0" json:"total_payout"`
	JobCount    int                        `gorm:"not null;default:0" json:"job_count"`
	JobIDs      datatypes.JSONSlice[string] `json:"job_ids"`

	// Lines keep each job as it stood at generation, so later edits to a job
	// do not change what the report shows.
	Lines datatypes.JSONSlice[PayrollLine] `gorm:"column:job_lines" json:"lines"`

	// ArchiveKey locates the archived PDF in blob storage, empty until archived.
	ArchiveKey string `gorm:"size:255" json:"archive_key,omitempty"`
}

// PayrollLine is one job of a payroll report.
type PayrollLine struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	ClientName      string     `json:"clientName"`
	WorkOrderNumber string     `json:"workOrderNumber,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Payout          float64    `json:"payout"`
	MaterialUsage   float64    `json:"materialUsage"`
	Notes           string     `json:"notes,omitempty"`
}

// GetUserID implements the Ownable interface.
func (p *PayrollReport) GetUserID() uint {
	return p.UserID
}
