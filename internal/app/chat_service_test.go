package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/prompt"
	"docuchat/internal/retrieval"
)

type fakeTurnStore struct {
	turns     []model.Turn
	appendErr error
}

func (s *fakeTurnStore) Append(turn *model.Turn) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.turns = append(s.turns, *turn)
	return nil
}

func (s *fakeTurnStore) ListByOwner(ownerID string) ([]model.Turn, error) {
	var out []model.Turn
	for _, t := range s.turns {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTurnStore) DeleteByOwner(ownerID string) error {
	var kept []model.Turn
	for _, t := range s.turns {
		if t.OwnerID != ownerID {
			kept = append(kept, t)
		}
	}
	s.turns = kept
	return nil
}

type fakeRetriever struct {
	chunks []retrieval.ScoredChunk
	err    error
}

func (r *fakeRetriever) Retrieve(context.Context, string, string, int) ([]retrieval.ScoredChunk, error) {
	return r.chunks, r.err
}

type fakeGenerator struct {
	reply    string
	err      error
	messages []ai.ChatMessage
}

func (g *fakeGenerator) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	g.messages = messages
	return g.reply, g.err
}

func newTestChatService(turns *fakeTurnStore, retriever *fakeRetriever, generator *fakeGenerator) *ChatService {
	return NewChatService(
		turns,
		retriever,
		prompt.NewAssembler(8000, 20),
		generator,
		nil,
		nil,
		5,
		nil,
	)
}

func TestSendHappyPath(t *testing.T) {
	turns := &fakeTurnStore{}
	generator := &fakeGenerator{reply: "the report says revenue grew"}
	svc := newTestChatService(turns, &fakeRetriever{}, generator)

	reply, err := svc.Send(context.Background(), SendInput{
		OwnerID: "user-1",
		Message: "what does the report say?",
	})
	require.NoError(t, err)
	assert.Equal(t, "the report says revenue grew", reply)

	require.Len(t, turns.turns, 2)
	assert.Equal(t, model.RoleUser, turns.turns[0].Role)
	assert.Equal(t, "what does the report say?", turns.turns[0].Content)
	assert.Equal(t, model.RoleAssistant, turns.turns[1].Role)
	assert.Equal(t, reply, turns.turns[1].Content)
}

func TestSendGenerationFailureStillPersistsApology(t *testing.T) {
	turns := &fakeTurnStore{}
	generator := &fakeGenerator{err: &ai.GenerationError{Kind: ai.KindTerminal, Status: 400, Message: "bad"}}
	svc := newTestChatService(turns, &fakeRetriever{}, generator)

	reply, err := svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "hi"})
	require.NoError(t, err, "generation failure is not a request failure")
	assert.Contains(t, reply, "I'm sorry")

	require.Len(t, turns.turns, 2)
	assert.Equal(t, reply, turns.turns[1].Content)
}

func TestSendRetrievalFailureDegradesToUngrounded(t *testing.T) {
	turns := &fakeTurnStore{}
	generator := &fakeGenerator{reply: "answered anyway"}
	svc := newTestChatService(turns, &fakeRetriever{err: errors.New("chunk store down")}, generator)

	reply, err := svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "answered anyway", reply)

	require.NotEmpty(t, generator.messages)
	sys, ok := generator.messages[0].Content.(string)
	require.True(t, ok)
	assert.Contains(t, sys, "No grounding context")
}

func TestSendRetrievedContextReachesGenerator(t *testing.T) {
	chunk := retrieval.ScoredChunk{Chunk: model.Chunk{Content: "margin was 40%"}, Score: 0.9}
	generator := &fakeGenerator{reply: "40%"}
	svc := newTestChatService(&fakeTurnStore{}, &fakeRetriever{chunks: []retrieval.ScoredChunk{chunk}}, generator)

	_, err := svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "margin?"})
	require.NoError(t, err)

	sys, ok := generator.messages[0].Content.(string)
	require.True(t, ok)
	assert.Contains(t, sys, "margin was 40%")
}

func TestSendPersistFailureSurfaces(t *testing.T) {
	turns := &fakeTurnStore{appendErr: errors.New("mysql down")}
	svc := newTestChatService(turns, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	_, err := svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "hi"})
	assert.Error(t, err)
}

func TestSendValidation(t *testing.T) {
	svc := newTestChatService(&fakeTurnStore{}, &fakeRetriever{}, &fakeGenerator{})

	_, err := svc.Send(context.Background(), SendInput{OwnerID: "", Message: "hi"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSendImageOnlyMessageIsValid(t *testing.T) {
	generator := &fakeGenerator{reply: "a cat"}
	svc := newTestChatService(&fakeTurnStore{}, &fakeRetriever{}, generator)

	reply, err := svc.Send(context.Background(), SendInput{
		OwnerID:     "user-1",
		ImageBase64: "aGVsbG8=",
		ImageMIME:   "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "a cat", reply)

	last := generator.messages[len(generator.messages)-1]
	_, multimodal := last.Content.([]ai.ContentPart)
	assert.True(t, multimodal, "image turns are sent as multimodal content")
}

func TestSendEmptyReplyBecomesApology(t *testing.T) {
	svc := newTestChatService(&fakeTurnStore{}, &fakeRetriever{}, &fakeGenerator{reply: "   "})

	reply, err := svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "hi"})
	require.NoError(t, err)
	assert.Contains(t, reply, "I'm sorry")
}

func TestHistoryScopedToOwner(t *testing.T) {
	turns := &fakeTurnStore{turns: []model.Turn{
		{OwnerID: "user-1", Role: model.RoleUser, Content: "mine"},
		{OwnerID: "user-2", Role: model.RoleUser, Content: "theirs"},
	}}
	svc := newTestChatService(turns, &fakeRetriever{}, &fakeGenerator{})

	got, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mine", got[0].Content)
}

func TestClearThenHistoryEmpty(t *testing.T) {
	turns := &fakeTurnStore{turns: []model.Turn{
		{OwnerID: "user-1", Role: model.RoleUser, Content: "hello"},
		{OwnerID: "user-1", Role: model.RoleAssistant, Content: "hi"},
		{OwnerID: "user-2", Role: model.RoleUser, Content: "kept"},
	}}
	svc := newTestChatService(turns, &fakeRetriever{}, &fakeGenerator{})

	require.NoError(t, svc.Clear(context.Background(), "user-1"))

	got, err := svc.History(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	other, err := svc.History(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSendHistoryFlowsIntoPrompt(t *testing.T) {
	turns := &fakeTurnStore{turns: []model.Turn{
		{OwnerID: "user-1", Role: model.RoleUser, Content: "earlier question"},
		{OwnerID: "user-1", Role: model.RoleAssistant, Content: "earlier answer"},
	}}
	generator := &fakeGenerator{reply: "ok"}
	svc := newTestChatService(turns, &fakeRetriever{}, generator)

	_, err := svc.Send(context.Background(), SendInput{OwnerID: "user-1", Message: "followup"})
	require.NoError(t, err)

	// system + 2 history turns + user message
	require.Len(t, generator.messages, 4)
	assert.Equal(t, "earlier question", generator.messages[1].Content)
	assert.Equal(t, "earlier answer", generator.messages[2].Content)
}
