package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated contractor account. Every other record
// is scoped to a user's namespace through its UserID.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
}

// Ownable is implemented by every record that lives in a user namespace.
type Ownable interface {
	GetUserID() uint
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&GeneralSettings{},
		&Job{},
		&JobInvoice{},
		&Adjustment{},
		&PayrollReport{},
	}
}
