package models

import "time"

// JobInvoice is a cost item recorded against a job (materials, rentals, subcontracted work).
// The payout flags let a cost reduce or increase what the crew is owed.
type JobInvoice struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     string    `gorm:"size:36;index;not null" json:"job_id"`

	Amount      float64    `gorm:"not null;default:0" json:"amount"`
	Date        *time.Time `json:"date,omitempty"`
	Origin      string     `gorm:"size:255" json:"origin,omitempty"`
	Description string     `gorm:"size:500" json:"description,omitempty"`

	IsPayoutDiscount bool `gorm:"not null;default:false" json:"is_payout_discount"`
	IsPayoutAddition bool `gorm:"not null;default:false" json:"is_payout_addition"`
	PaidByContractor bool `gorm:"not null;default:false" json:"paid_by_contractor"`
}
