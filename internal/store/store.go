// Package store persists jobs, settings, users and payroll reports with gorm.
// Every query is scoped to the owner's user id.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist in the caller's namespace.
	ErrNotFound = errors.New("record_not_found")
	// ErrReportExists is returned when a payroll report for the same week is already stored.
	ErrReportExists = errors.New("payroll_report_exists")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

// notFound maps gorm's record-not-found to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func owned(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
