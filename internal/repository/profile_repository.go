package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docuchat/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByOwner(ownerID string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.Where("owner_id = ?", ownerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Upsert(profile *model.Profile) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "bio", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("upsert profile failed: %w", err)
	}
	return nil
}
