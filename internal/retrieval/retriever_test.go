package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

type fakeChunkSource struct {
	chunks []model.Chunk
	err    error
	owner  string
}

func (s *fakeChunkSource) ListByOwner(ownerID string) ([]model.Chunk, error) {
	s.owner = ownerID
	return s.chunks, s.err
}

type fakeQueryEmbedder struct {
	vec []float32
	err error
}

func (e *fakeQueryEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.vec, e.err
}

func chunkWithVector(id string, created time.Time, vec []float32) model.Chunk {
	c := model.Chunk{ID: id, OwnerID: "user-1", Content: "content " + id, CreatedAt: created}
	c.SetEmbedding(vec)
	return c
}

func TestRetrieveRanksByCosineSimilarity(t *testing.T) {
	now := time.Now()
	source := &fakeChunkSource{chunks: []model.Chunk{
		chunkWithVector("far", now, []float32{0, 1}),
		chunkWithVector("near", now, []float32{1, 0.01}),
		chunkWithVector("mid", now, []float32{1, 1}),
	}}
	r := NewRetriever(source, &fakeQueryEmbedder{vec: []float32{1, 0}})

	got, err := r.Retrieve(context.Background(), "user-1", "query", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].Chunk.ID)
	assert.Equal(t, "mid", got[1].Chunk.ID)
	assert.Equal(t, "far", got[2].Chunk.ID)
	assert.Equal(t, "user-1", source.owner, "scoping is pushed into the source query")
}

func TestRetrieveTopKBound(t *testing.T) {
	now := time.Now()
	source := &fakeChunkSource{chunks: []model.Chunk{
		chunkWithVector("a", now, []float32{1, 0}),
		chunkWithVector("b", now, []float32{1, 1}),
		chunkWithVector("c", now, []float32{0, 1}),
	}}
	r := NewRetriever(source, &fakeQueryEmbedder{vec: []float32{1, 0}})

	got, err := r.Retrieve(context.Background(), "user-1", "query", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRetrieveTieBreaksTowardNewest(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	source := &fakeChunkSource{chunks: []model.Chunk{
		chunkWithVector("old", older, []float32{1, 0}),
		chunkWithVector("new", newer, []float32{1, 0}),
	}}
	r := NewRetriever(source, &fakeQueryEmbedder{vec: []float32{1, 0}})

	got, err := r.Retrieve(context.Background(), "user-1", "query", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Chunk.ID)
	assert.Equal(t, "old", got[1].Chunk.ID)
}

func TestRetrieveEmptyQueryReturnsNothing(t *testing.T) {
	r := NewRetriever(&fakeChunkSource{}, &fakeQueryEmbedder{})

	got, err := r.Retrieve(context.Background(), "user-1", "   ", 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRetrieveNoCandidatesIsNotAnError(t *testing.T) {
	r := NewRetriever(&fakeChunkSource{}, &fakeQueryEmbedder{vec: []float32{1}})

	got, err := r.Retrieve(context.Background(), "user-1", "query", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveRequiresOwner(t *testing.T) {
	r := NewRetriever(&fakeChunkSource{}, &fakeQueryEmbedder{})

	_, err := r.Retrieve(context.Background(), "", "query", 5)
	assert.Error(t, err)
}

func TestRetrieveEmbedderFailurePropagates(t *testing.T) {
	now := time.Now()
	source := &fakeChunkSource{chunks: []model.Chunk{chunkWithVector("a", now, []float32{1})}}
	r := NewRetriever(source, &fakeQueryEmbedder{err: errors.New("embedding down")})

	_, err := r.Retrieve(context.Background(), "user-1", "query", 5)
	assert.Error(t, err)
}

func TestCosineSimilarityMismatchedDimensionsScoreZero(t *testing.T) {
	assert.Zero(t, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Zero(t, cosineSimilarity(nil, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}
