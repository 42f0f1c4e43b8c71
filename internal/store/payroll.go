package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/diewo77/brushwork/internal/models"
)

// CreatePayrollReport inserts r unless a report with the same id or the same
// (user, year, week) exists, in which case ErrReportExists is returned and
// nothing is written.
func (s *Store) CreatePayrollReport(ctx context.Context, r *models.PayrollReport) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(r)
	if res.Error != nil {
		return fmt.Errorf("create payroll report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReportExists
	}
	return nil
}

func (s *Store) ListPayrollReports(ctx context.Context, userID uint) ([]models.PayrollReport, error) {
	var out []models.PayrollReport
	if err := s.DB.WithContext(ctx).Scopes(owned(userID)).Order("year desc, week_number desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payroll reports: %w", err)
	}
	return out, nil
}

func (s *Store) GetPayrollReport(ctx context.Context, userID uint, id string) (*models.PayrollReport, error) {
	var r models.PayrollReport
	if err := s.DB.WithContext(ctx).Scopes(owned(userID)).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) DeletePayrollReport(ctx context.Context, userID uint, id string) error {
	res := s.DB.WithContext(ctx).Scopes(owned(userID)).Where("id = ?", id).Delete(&models.PayrollReport{})
	if res.Error != nil {
		return fmt.Errorf("delete payroll report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetArchiveKey records where the report's PDF was archived.
func (s *Store) SetArchiveKey(ctx context.Context, userID uint, id, key string) error {
	res := s.DB.WithContext(ctx).Model(&models.PayrollReport{}).Scopes(owned(userID)).Where("id = ?", id).Update("archive_key", key)
	if res.Error != nil {
		return fmt.Errorf("set archive key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
