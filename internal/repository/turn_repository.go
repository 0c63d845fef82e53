package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type TurnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

// Append persists one turn. The timestamp is assigned here, never taken
// from the client, so display order cannot be skewed by client clocks.
func (r *TurnRepository) Append(turn *model.Turn) error {
	turn.CreatedAt = time.Now()
	if err := r.db.Create(turn).Error; err != nil {
		return fmt.Errorf("append turn failed: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's conversation oldest first. The id
// tie-break keeps same-millisecond appends stable.
func (r *TurnRepository) ListByOwner(ownerID string) ([]model.Turn, error) {
	var turns []model.Turn
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC, id ASC").Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("list turns failed: %w", err)
	}
	return turns, nil
}

// DeleteByOwner removes all of the owner's turns in a single statement, so
// a concurrent reader sees either the full history or none of it.
func (r *TurnRepository) DeleteByOwner(ownerID string) error {
	if err := r.db.Where("owner_id = ?", ownerID).Delete(&model.Turn{}).Error; err != nil {
		return fmt.Errorf("clear turns failed: %w", err)
	}
	return nil
}
