package db

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/brushwork/internal/models"
	"github.com/diewo77/brushwork/internal/store"
)

// DefaultSettings are saved for a seeded account.
var DefaultSettings = models.GeneralSettings{
	HourlyRate:                  35,
	DailyPayTarget:              300,
	IdealMaterialCostPercentage: 15,
	SharePercentage:             30,
	TaxRate:                     20,
}

// SeedUser creates the account and its default settings unless the email is
// already registered. It returns the user either way.
func SeedUser(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	s := store.New(db)
	existing, err := s.UserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, Password: string(hash)}
	if err := s.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	if _, err := s.SaveSettings(ctx, u.ID, DefaultSettings); err != nil {
		return nil, err
	}
	return u, nil
}
