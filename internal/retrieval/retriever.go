package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"docuchat/internal/model"
)

const defaultTopK = 5

// ScoredChunk is a retrieved chunk with its relevance score.
type ScoredChunk struct {
	Chunk model.Chunk `json:"chunk"`
	Score float32     `json:"score"`
}

// ChunkSource lists chunks for exactly one owner. The owner scoping lives
// in the source query itself, not in post-filtering here.
type ChunkSource interface {
	ListByOwner(ownerID string) ([]model.Chunk, error)
}

type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever ranks an owner's chunks against a query by cosine similarity.
type Retriever struct {
	chunks   ChunkSource
	embedder QueryEmbedder
}

func NewRetriever(chunks ChunkSource, embedder QueryEmbedder) *Retriever {
	return &Retriever{chunks: chunks, embedder: embedder}
}

// Retrieve returns up to topK chunks most relevant first. An empty result
// is valid and means no matching content, not an error. Score ties break
// toward the most recently indexed chunk.
func (r *Retriever) Retrieve(ctx context.Context, ownerID, query string, topK int) ([]ScoredChunk, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	candidates, err := r.chunks.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredChunk, len(candidates))
	for i := range candidates {
		scored[i] = ScoredChunk{
			Chunk: candidates[i],
			Score: cosineSimilarity(queryVec, candidates[i].EmbeddingVector()),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.CreatedAt.After(scored[j].Chunk.CreatedAt)
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
