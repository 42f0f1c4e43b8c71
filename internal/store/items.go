package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/diewo77/brushwork/internal/models"
)

// ownsJob checks that the job exists in the user's namespace.
func (s *Store) ownsJob(ctx context.Context, userID uint, jobID string) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Job{}).Scopes(owned(userID)).Where("id = ?", jobID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddInvoice(ctx context.Context, userID uint, jobID string, inv *models.JobInvoice) error {
	if err := s.ownsJob(ctx, userID, jobID); err != nil {
		return err
	}
	inv.ID = uuid.NewString()
	inv.JobID = jobID
	if err := s.DB.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, userID uint, jobID, invoiceID string) error {
	if err := s.ownsJob(ctx, userID, jobID); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("id = ? AND job_id = ?", invoiceID, jobID).Delete(&models.JobInvoice{})
	if res.Error != nil {
		return fmt.Errorf("delete invoice: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddAdjustment(ctx context.Context, userID uint, jobID string, adj *models.Adjustment) error {
	if err := s.ownsJob(ctx, userID, jobID); err != nil {
		return err
	}
	adj.ID = uuid.NewString()
	adj.JobID = jobID
	if err := s.DB.WithContext(ctx).Create(adj).Error; err != nil {
		return fmt.Errorf("create adjustment: %w", err)
	}
	return nil
}

func (s *Store) DeleteAdjustment(ctx context.Context, userID uint, jobID, adjustmentID string) error {
	if err := s.ownsJob(ctx, userID, jobID); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("id = ? AND job_id = ?", adjustmentID, jobID).Delete(&models.Adjustment{})
	if res.Error != nil {
		return fmt.Errorf("delete adjustment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
