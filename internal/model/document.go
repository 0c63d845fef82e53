package model

import "time"

const (
	DocumentStatusPending = "pending"
	DocumentStatusIndexed = "indexed"
	DocumentStatusFailed  = "failed"
)

// Document is an uploaded file owned by one user. Status moves
// pending -> indexed once the background indexer finishes, or
// pending -> failed with Error retained for the status query.
type Document struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID     string     `gorm:"size:128;not null;index" json:"-"`
	Filename    string     `gorm:"size:256;not null" json:"filename"`
	StoragePath string     `gorm:"size:512;not null" json:"-"`
	Status      string     `gorm:"size:16;not null;index" json:"status"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	ChunkCount  int        `json:"chunk_count"`
	CreatedAt   time.Time  `json:"created_at"`
	IndexedAt   *time.Time `json:"indexed_at,omitempty"`
}
