package index

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docuchat/internal/model"
)

const embeddingBatchSize = 10 // embedding APIs often limit batch size

type DocumentStore interface {
	GetByID(id string) (*model.Document, error)
	MarkIndexed(id string, chunkCount int) error
	MarkFailed(id, reason string) error
}

type ChunkStore interface {
	ReplaceForDocument(documentID string, chunks []model.Chunk) error
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type FileStore interface {
	Read(path string) ([]byte, error)
}

// Indexer turns an uploaded document into retrievable chunks: extract,
// split, embed, upsert. It runs in the background worker, not on the
// upload request.
type Indexer struct {
	docs     DocumentStore
	chunks   ChunkStore
	embedder Embedder
	files    FileStore

	chunkSize int
	overlap   int
	logger    *zap.Logger
}

func NewIndexer(docs DocumentStore, chunks ChunkStore, embedder Embedder, files FileStore, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		docs:      docs,
		chunks:    chunks,
		embedder:  embedder,
		files:     files,
		chunkSize: defaultChunkSize,
		overlap:   defaultChunkOverlap,
		logger:    logger,
	}
}

// Index processes one document end to end. Extraction failures are recorded
// on the document (status=failed) and consume the job; infrastructure
// failures return an error so the job can be retried, which is safe because
// chunk upsert replaces by document id.
func (ix *Indexer) Index(ctx context.Context, documentID string) error {
	doc, err := ix.docs.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		ix.logger.Warn("index job for unknown document", zap.String("document_id", documentID))
		return nil
	}

	raw, err := ix.files.Read(doc.StoragePath)
	if err != nil {
		return fmt.Errorf("read stored file failed: %w", err)
	}

	text, err := ExtractText(doc.Filename, raw)
	if err != nil {
		ix.logger.Info("extraction failed",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		return ix.docs.MarkFailed(doc.ID, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return ix.docs.MarkFailed(doc.ID, "no extractable text")
	}

	// Whitespace-only windows (blank pages, padding runs) carry nothing
	// retrievable and the embedding backend skips them, so they are dropped
	// before sequence indices are assigned.
	var parts []string
	for _, p := range SplitChunks(text, ix.chunkSize, ix.overlap) {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	embeddings, err := ix.embedAll(ctx, parts)
	if err != nil {
		if markErr := ix.docs.MarkFailed(doc.ID, err.Error()); markErr != nil {
			return markErr
		}
		return fmt.Errorf("embed chunks failed: %w", err)
	}

	chunks := make([]model.Chunk, len(parts))
	for i := range parts {
		chunks[i] = model.Chunk{
			ID:         model.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			OwnerID:    doc.OwnerID,
			Seq:        i,
			Content:    parts[i],
		}
		chunks[i].SetEmbedding(embeddings[i])
	}

	if err := ix.chunks.ReplaceForDocument(doc.ID, chunks); err != nil {
		if markErr := ix.docs.MarkFailed(doc.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	if err := ix.docs.MarkIndexed(doc.ID, len(chunks)); err != nil {
		return err
	}
	ix.logger.Info("document indexed",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(chunks)),
	)
	return nil
}

func (ix *Indexer) embedAll(ctx context.Context, parts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for start := 0; start < len(parts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(parts) {
			end = len(parts)
		}
		start, end := start, end
		g.Go(func() error {
			batch, err := ix.embedder.EmbedBatch(gctx, parts[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding count mismatch: want %d got %d", end-start, len(batch))
			}
			copy(embeddings[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}
