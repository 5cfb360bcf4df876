package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/models"
)

// FlagsRepository reads and writes the app_flags marker table.
type FlagsRepository struct {
	db *gorm.DB
}

func NewFlagsRepository(db *gorm.DB) *FlagsRepository {
	return &FlagsRepository{db: db}
}

// Get returns the value of a flag, or ErrNotFound if it was never set.
func (r *FlagsRepository) Get(ctx context.Context, key string) (string, error) {
	var flag models.AppFlag
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&flag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("flag %s: %w", key, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("failed to read flag %s: %w", key, err)
	}
	return flag.Value, nil
}

// Set upserts a flag value.
func (r *FlagsRepository) Set(ctx context.Context, key, value string) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO app_flags (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP",
		key, value,
	).Error
	if err != nil {
		return fmt.Errorf("failed to write flag %s: %w", key, err)
	}
	return nil
}
