package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/brushwork/internal/models"
)

// GetSettings returns the user's settings, or zero-valued settings when none
// were saved yet.
func (s *Store) GetSettings(ctx context.Context, userID uint) (models.GeneralSettings, error) {
	var gs models.GeneralSettings
	err := s.DB.WithContext(ctx).Scopes(owned(userID)).First(&gs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.GeneralSettings{UserID: userID}, nil
	}
	if err != nil {
		return models.GeneralSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return gs, nil
}

// SaveSettings creates or replaces the user's settings row.
func (s *Store) SaveSettings(ctx context.Context, userID uint, in models.GeneralSettings) (models.GeneralSettings, error) {
	in.ID = 0
	in.UserID = userID
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "hourly_rate", "daily_pay_target", "ideal_material_cost_percentage",
			"share_percentage", "tax_rate", "business_name", "business_logo_url",
		}),
	}).Create(&in).Error
	if err != nil {
		return models.GeneralSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return s.GetSettings(ctx, userID)
}
