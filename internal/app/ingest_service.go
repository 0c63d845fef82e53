package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docuchat/internal/index"
	"docuchat/internal/model"
)

type DocumentStore interface {
	Create(doc *model.Document) error
	GetByIDAndOwner(id, ownerID string) (*model.Document, error)
	ListByOwner(ownerID string) ([]model.Document, error)
	DeleteByIDAndOwner(id, ownerID string) error
}

type ChunkPurger interface {
	DeleteByDocumentID(documentID string) error
}

type RawFileStore interface {
	Save(ownerID, filename string, data []byte) (string, error)
	Remove(path string) error
}

type JobPublisher interface {
	Publish(ctx context.Context, job model.IndexJob) error
}

// IngestService accepts uploads, hands indexing to the background worker,
// and owns the document lifecycle including cascade deletion.
type IngestService struct {
	docs      DocumentStore
	chunks    ChunkPurger
	files     RawFileStore
	publisher JobPublisher
	retriever ContextRetriever
	topK      int
	logger    *zap.Logger
}

func NewIngestService(
	docs DocumentStore,
	chunks ChunkPurger,
	files RawFileStore,
	publisher JobPublisher,
	retriever ContextRetriever,
	topK int,
	logger *zap.Logger,
) *IngestService {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		docs:      docs,
		chunks:    chunks,
		files:     files,
		publisher: publisher,
		retriever: retriever,
		topK:      topK,
		logger:    logger,
	}
}

// Upload stores the raw file, creates the document as pending and enqueues
// the index job. Indexing is backgrounded: the response acknowledges
// receipt and clients poll the document status for the outcome.
func (s *IngestService) Upload(ctx context.Context, ownerID, filename string, data []byte) (*model.Document, error) {
	if ownerID == "" || len(data) == 0 {
		return nil, ErrInvalidInput
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, ErrInvalidInput
	}
	if index.DetectKind(filename) == index.KindUnsupported {
		return nil, ErrUnsupportedFile
	}

	path, err := s.files.Save(ownerID, filename, data)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Filename:    filename,
		StoragePath: path,
		Status:      model.DocumentStatusPending,
	}
	if err := s.docs.Create(doc); err != nil {
		_ = s.files.Remove(path)
		return nil, err
	}

	if err := s.publisher.Publish(ctx, model.IndexJob{DocumentID: doc.ID}); err != nil {
		s.logger.Error("enqueue index job failed",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
		return nil, ErrJobEnqueue
	}
	return doc, nil
}

func (s *IngestService) ListDocuments(ownerID string) ([]model.Document, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.docs.ListByOwner(ownerID)
}

// Delete removes a document, its chunks and its stored file. Chunks go
// first so a deleted document never leaves retrievable content behind.
func (s *IngestService) Delete(ctx context.Context, ownerID, documentID string) error {
	if ownerID == "" || documentID == "" {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetByIDAndOwner(documentID, ownerID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if err := s.chunks.DeleteByDocumentID(doc.ID); err != nil {
		return err
	}
	if err := s.docs.DeleteByIDAndOwner(doc.ID, ownerID); err != nil {
		return err
	}
	if err := s.files.Remove(doc.StoragePath); err != nil {
		s.logger.Warn("remove stored file failed",
			zap.String("document_id", doc.ID),
			zap.Error(err),
		)
	}
	return nil
}

// SearchResult is one ranked snippet from the owner's documents.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Seq        int     `json:"seq"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// Search exposes the retriever directly: ranked chunks for a query, scoped
// to the owner.
func (s *IngestService) Search(ctx context.Context, ownerID, query string) ([]SearchResult, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}

	chunks, err := s.retriever.Retrieve(ctx, ownerID, query, s.topK)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(chunks))
	for i, c := range chunks {
		results[i] = SearchResult{
			DocumentID: c.Chunk.DocumentID,
			ChunkID:    c.Chunk.ID,
			Seq:        c.Chunk.Seq,
			Content:    c.Chunk.Content,
			Score:      c.Score,
		}
	}
	return results, nil
}
