package ai

import "context"

// CompletionService binds a client to one chat configuration so callers
// don't carry config around.
type CompletionService struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewCompletionService(client *OpenAICompatibleClient, cfg ChatConfig) *CompletionService {
	return &CompletionService{client: client, cfg: cfg}
}

func (s *CompletionService) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return s.client.Complete(ctx, s.cfg, messages)
}

// EmbeddingService binds a client to one embedding configuration.
type EmbeddingService struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
}

func NewEmbeddingService(client *OpenAICompatibleClient, cfg EmbeddingConfig) *EmbeddingService {
	return &EmbeddingService{client: client, cfg: cfg}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.client.Embed(ctx, s.cfg, text)
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.client.EmbedBatch(ctx, s.cfg, texts)
}
