package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/prompt"
	"docuchat/internal/retrieval"
)

const apologyReply = "I'm sorry, I wasn't able to generate a response to that message. Please try again in a moment."

type TurnStore interface {
	Append(turn *model.Turn) error
	ListByOwner(ownerID string) ([]model.Turn, error)
	DeleteByOwner(ownerID string) error
}

type ContextRetriever interface {
	Retrieve(ctx context.Context, ownerID, query string, topK int) ([]retrieval.ScoredChunk, error)
}

type Generator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, ownerID string) ([]model.Turn, bool, error)
	SetHistory(ctx context.Context, ownerID string, turns []model.Turn) error
	DeleteHistory(ctx context.Context, ownerID string) error
	MarkDirty(ctx context.Context, ownerID string) error
	IsDirty(ctx context.Context, ownerID string) (bool, error)
}

type ImageSaver interface {
	Save(ownerID, filename string, data []byte) (string, error)
}

// ChatService runs the chat pipeline: retrieve, assemble, generate,
// persist. Terminal generation failures still produce an assistant turn so
// the chat endpoint always returns a reply shape.
type ChatService struct {
	turns     TurnStore
	retriever ContextRetriever
	assembler *prompt.Assembler
	generator Generator
	cache     HistoryCache
	images    ImageSaver
	topK      int
	logger    *zap.Logger
}

func NewChatService(
	turns TurnStore,
	retriever ContextRetriever,
	assembler *prompt.Assembler,
	generator Generator,
	cache HistoryCache,
	images ImageSaver,
	topK int,
	logger *zap.Logger,
) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		turns:     turns,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
		cache:     cache,
		images:    images,
		topK:      topK,
		logger:    logger,
	}
}

type SendInput struct {
	OwnerID     string
	Message     string
	ImageBase64 string
	ImageMIME   string
	ImageBytes  []byte // decoded copy, stored alongside the turn
	// Metadata is an opaque client field reserved for future use; it is
	// logged but never interpreted.
	Metadata map[string]any
}

// Send runs one chat turn and returns the assistant reply. Once generation
// starts, generation and persistence run on a context detached from the
// client connection so a disconnect cannot lose the answered turn.
func (s *ChatService) Send(ctx context.Context, input SendInput) (string, error) {
	if input.OwnerID == "" {
		return "", ErrInvalidInput
	}
	message := strings.TrimSpace(input.Message)
	if message == "" && input.ImageBase64 == "" {
		return "", ErrInvalidInput
	}
	if len(input.Metadata) > 0 {
		s.logger.Debug("chat metadata received", zap.Any("metadata", input.Metadata))
	}

	detached := context.WithoutCancel(ctx)

	history, err := s.historyForPrompt(ctx, input.OwnerID)
	if err != nil {
		return "", err
	}

	// Retrieval failure degrades to an ungrounded answer instead of
	// failing the chat request.
	chunks, err := s.retriever.Retrieve(ctx, input.OwnerID, message, s.topK)
	if err != nil {
		s.logger.Warn("retrieval failed, continuing without context",
			zap.String("owner", input.OwnerID),
			zap.Error(err),
		)
		chunks = nil
	}

	promptInput := prompt.Input{
		History: history,
		Message: message,
		Chunks:  chunks,
	}
	var imageRef string
	if input.ImageBase64 != "" {
		promptInput.Image = &prompt.ImageAttachment{
			Base64:   input.ImageBase64,
			MIMEType: input.ImageMIME,
		}
		imageRef = s.storeImage(input)
	}

	reply, genErr := s.generator.Complete(detached, s.assembler.Assemble(promptInput))
	if genErr != nil {
		s.logger.Error("generation failed",
			zap.String("owner", input.OwnerID),
			zap.Error(genErr),
		)
		reply = apologyReply
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = apologyReply
	}

	if s.cache != nil {
		_ = s.cache.MarkDirty(detached, input.OwnerID)
		_ = s.cache.DeleteHistory(detached, input.OwnerID)
	}

	userTurn := &model.Turn{
		OwnerID:  input.OwnerID,
		Role:     model.RoleUser,
		Content:  message,
		ImageRef: imageRef,
	}
	if err := s.turns.Append(userTurn); err != nil {
		return "", err
	}
	assistantTurn := &model.Turn{
		OwnerID: input.OwnerID,
		Role:    model.RoleAssistant,
		Content: reply,
	}
	if err := s.turns.Append(assistantTurn); err != nil {
		return "", err
	}

	return reply, nil
}

// History returns the owner's conversation oldest first, via the cache
// when it is clean.
func (s *ChatService) History(ctx context.Context, ownerID string) ([]model.Turn, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, ownerID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetHistory(ctx, ownerID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	turns, err := s.turns.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, ownerID); dirtyErr == nil && !dirty {
			_ = s.cache.SetHistory(ctx, ownerID, turns)
		}
	}
	return turns, nil
}

// Clear irreversibly removes the owner's conversation.
func (s *ChatService) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return ErrInvalidInput
	}
	if err := s.turns.DeleteByOwner(ownerID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.DeleteHistory(ctx, ownerID)
	}
	return nil
}

func (s *ChatService) historyForPrompt(ctx context.Context, ownerID string) ([]model.Turn, error) {
	return s.History(ctx, ownerID)
}

// storeImage keeps the attached image alongside the turn; failure to store
// is logged but does not fail the chat.
func (s *ChatService) storeImage(input SendInput) string {
	if s.images == nil || len(input.ImageBytes) == 0 {
		return ""
	}
	ext := extensionForMIME(input.ImageMIME)
	ref, err := s.images.Save(input.OwnerID, "chat-image"+ext, input.ImageBytes)
	if err != nil {
		s.logger.Warn("store chat image failed",
			zap.String("owner", input.OwnerID),
			zap.Error(err),
		)
		return ""
	}
	return ref
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
