package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Chunk is a retrievable fragment of an indexed document. The ID is
// deterministic per (document, sequence) so re-ingesting a document
// replaces rather than duplicates its chunks.
// Embedding is stored as JSON array of float32 for portability.
type Chunk struct {
	ID         string    `gorm:"size:48;primaryKey" json:"id"`
	DocumentID string    `gorm:"type:char(36);not null;index" json:"document_id"`
	OwnerID    string    `gorm:"size:128;not null;index" json:"-"`
	Seq        int       `gorm:"not null" json:"seq"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChunkID builds the deterministic chunk primary key.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s:%d", documentID, seq)
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
