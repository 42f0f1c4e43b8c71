package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobStatus represents where a job sits in its lifecycle.
type JobStatus string

const (
	StatusNotStarted  JobStatus = "Not Started"
	StatusInProgress  JobStatus = "In Progress"
	StatusComplete    JobStatus = "Complete"
	StatusOpenPayment JobStatus = "Open Payment"
	StatusFinalized   JobStatus = "Finalized"
)

// Job is a unit of painting work for a client.
// Implements the Ownable interface for namespace scoping.
type Job struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner namespace of this job
	UserID uint `gorm:"index;not null" json:"-"`

	// Descriptive
	Title           string `gorm:"size:255;not null" json:"title"`
	ClientName      string `gorm:"size:255" json:"client_name"`
	Address         string `gorm:"size:500" json:"address,omitempty"`
	QuoteNumber     string `gorm:"size:50" json:"quote_number,omitempty"`
	WorkOrderNumber string `gorm:"size:50" json:"work_order_number,omitempty"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`

	// Dates. Deadline holds the actual completion time once the job reaches Complete.
	StartDate        *time.Time                        `json:"start_date,omitempty"`
	Deadline         *time.Time                        `json:"deadline,omitempty"`
	FinalizationDate *time.Time                        `json:"finalization_date,omitempty"`
	ProductionDays   datatypes.JSONSlice[ProductionDay] `json:"production_days"`

	// Money
	InitialValue      float64 `gorm:"not null;default:0" json:"initial_value"`
	Budget            float64 `gorm:"not null;default:0" json:"budget"`
	IsFixedPay        bool    `gorm:"not null;default:false" json:"is_fixed_pay"`
	IdealMaterialCost float64 `gorm:"not null;default:0" json:"ideal_material_cost"`
	IdealNumberOfDays float64 `gorm:"not null;default:0" json:"ideal_number_of_days"`

	Status JobStatus `gorm:"size:20;not null;default:'Not Started';index" json:"status"`

	Invoices    []JobInvoice `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"invoices"`
	Adjustments []Adjustment `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"adjustments"`
}

// GetUserID implements the Ownable interface.
func (j *Job) GetUserID() uint {
	return j.UserID
}

// IsCompleted reports whether the job has reached Complete or any later status.
func (j *Job) IsCompleted() bool {
	switch j.Status {
	case StatusComplete, StatusOpenPayment, StatusFinalized:
		return true
	}
	return false
}
