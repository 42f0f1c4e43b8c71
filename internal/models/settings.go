package models

import "time"

// GeneralSettings holds the owner's global rates and targets used by the
// financial calculations. One row per user; a missing row means zero values.
type GeneralSettings struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of these settings
	UserID uint `gorm:"uniqueIndex;not null" json:"-"`

	HourlyRate                  float64 `gorm:"not null;default:0" json:"hourly_rate"`
	DailyPayTarget              float64 `gorm:"not null;default:0" json:"daily_pay_target"`
	IdealMaterialCostPercentage float64 `gorm:"not null;default:0" json:"ideal_material_cost_percentage"`
	SharePercentage             float64 `gorm:"not null;default:0" json:"share_percentage"`
	TaxRate                     float64 `gorm:"not null;default:0" json:"tax_rate"`

	// Branding used on payroll reports
	BusinessName    string `gorm:"size:255" json:"business_name,omitempty"`
	BusinessLogoURL string `gorm:"size:500" json:"business_logo_url,omitempty"`
}

// GetUserID implements the Ownable interface.
func (s *GeneralSettings) GetUserID() uint {
	return s.UserID
}
