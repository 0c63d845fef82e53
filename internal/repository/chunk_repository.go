package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument deletes the document's existing chunks and inserts the
// new set in one transaction. Re-running ingestion for a document therefore
// never duplicates chunks.
func (r *ChunkRepository) ReplaceForDocument(documentID string, chunks []model.Chunk) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.Create(&chunks).Error
	})
	if err != nil {
		return fmt.Errorf("replace chunks for document failed: %w", err)
	}
	return nil
}

// ListByOwner returns every chunk the owner can retrieve. The owner filter
// is mandatory; there is no unscoped listing.
func (r *ChunkRepository) ListByOwner(ownerID string) ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := r.db.Where("owner_id = ?", ownerID).Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by owner failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByDocumentID(documentID string) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}
