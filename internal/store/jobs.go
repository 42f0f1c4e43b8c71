package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diewo77/brushwork/internal/lifecycle"
	"github.com/diewo77/brushwork/internal/models"
)

var unsafeSearch = regexp.MustCompile(`[^\p{L}\p{N} \-_']`)

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Status models.JobStatus
	Query  string
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Invoices", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Adjustments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") })
}

// ListJobs returns the user's jobs, newest first, with invoices and adjustments loaded.
func (s *Store) ListJobs(ctx context.Context, userID uint, f JobFilter) ([]models.Job, error) {
	q := s.DB.WithContext(ctx).Scopes(owned(userID), withItems)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if term := strings.TrimSpace(unsafeSearch.ReplaceAllString(f.Query, "")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("lower(title) LIKE ? OR lower(client_name) LIKE ? OR lower(address) LIKE ?", like, like, like)
	}
	var jobs []models.Job
	if err := q.Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob loads one job with its invoices and adjustments.
func (s *Store) GetJob(ctx context.Context, userID uint, id string) (*models.Job, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).Scopes(owned(userID), withItems).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

// GetJobsByIDs loads the selected jobs in the order of ids. A missing id fails
// the whole lookup with ErrNotFound.
func (s *Store) GetJobsByIDs(ctx context.Context, userID uint, ids []string) ([]models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.FindJobs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Job, len(found))
	for _, j := range found {
		byID[j.ID] = j
	}
	jobs := make([]models.Job, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		j, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: job %s", ErrNotFound, id)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// FindJobs loads whichever of ids still exist in the namespace, in no
// particular order.
func (s *Store) FindJobs(ctx context.Context, userID uint, ids []string) ([]models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Job
	if err := s.DB.WithContext(ctx).Scopes(owned(userID), withItems).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	return found, nil
}

// CreateJob stores a new job for the user. Invoices and adjustments on job are
// created with it.
func (s *Store) CreateJob(ctx context.Context, userID uint, job *models.Job) error {
	job.ID = uuid.NewString()
	job.UserID = userID
	if job.Status == "" {
		job.Status = models.StatusNotStarted
	}
	job.ProductionDays = models.NormalizeProductionDays(job.ProductionDays)
	for i := range job.Invoices {
		job.Invoices[i].ID = uuid.NewString()
	}
	for i := range job.Adjustments {
		job.Adjustments[i].ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// UpdateJob applies a column map to one job and returns the reloaded job.
func (s *Store) UpdateJob(ctx context.Context, userID uint, id string, fields map[string]any) (*models.Job, error) {
	if len(fields) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.Job{}).Scopes(owned(userID)).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("update job: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetJob(ctx, userID, id)
}

// DeleteJob soft-deletes a job.
func (s *Store) DeleteJob(ctx context.Context, userID uint, id string) error {
	res := s.DB.WithContext(ctx).Scopes(owned(userID)).Where("id = ?", id).Delete(&models.Job{})
	if res.Error != nil {
		return fmt.Errorf("delete job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProductionDays replaces the job's production days with the normalized set.
func (s *Store) SetProductionDays(ctx context.Context, userID uint, id string, days []models.ProductionDay) (*models.Job, error) {
	norm := datatypes.JSONSlice[models.ProductionDay](models.NormalizeProductionDays(days))
	return s.UpdateJob(ctx, userID, id, map[string]any{"production_days": norm})
}

// ApplyJobUpdates writes a batch of planned updates in one transaction. If any
// job is missing from the namespace nothing is written.
func (s *Store) ApplyJobUpdates(ctx context.Context, userID uint, updates []lifecycle.JobUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&models.Job{}).Scopes(owned(userID)).Where("id = ?", u.JobID).Updates(u.Fields())
			if res.Error != nil {
				return fmt.Errorf("update job %s: %w", u.JobID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: job %s", ErrNotFound, u.JobID)
			}
		}
		return nil
	})
}
