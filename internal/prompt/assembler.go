package prompt

import (
	"strings"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/retrieval"
)

const (
	groundedSystemPrompt = "You are a helpful assistant. Answer the user's question based only on the " +
		"following context from their uploaded documents. If the context does not contain " +
		"enough information, say so. Do not make up facts."
	ungroundedSystemPrompt = "You are a helpful assistant. No grounding context from the user's uploaded " +
		"documents is available for this question. If the question asks about their documents, " +
		"state that no relevant information was found; do not invent document content or citations."
)

// ImageAttachment is an inline image accompanying the user's question.
type ImageAttachment struct {
	Base64   string
	MIMEType string
}

// Input is one chat turn to be turned into a generation request.
type Input struct {
	History []model.Turn
	Message string
	Image   *ImageAttachment
	Chunks  []retrieval.ScoredChunk
}

// Assembler builds generation requests from retrieved context, history and
// the new turn.
type Assembler struct {
	contextBudget int // max context characters across all chunks
	maxHistory    int // max prior turns included
}

func NewAssembler(contextBudget, maxHistory int) *Assembler {
	if contextBudget <= 0 {
		contextBudget = 8000
	}
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Assembler{contextBudget: contextBudget, maxHistory: maxHistory}
}

// Assemble produces the message sequence for the generation backend:
// system grounding message, bounded history, then the user's turn. Chunks
// arrive most relevant first; when over budget the least relevant are
// dropped first, so truncation is deterministic.
func (a *Assembler) Assemble(in Input) []ai.ChatMessage {
	kept := a.fitBudget(in.Chunks)

	messages := make([]ai.ChatMessage, 0, len(in.History)+2)
	if len(kept) == 0 {
		messages = append(messages, ai.TextMessage("system", ungroundedSystemPrompt))
	} else {
		var b strings.Builder
		b.WriteString(groundedSystemPrompt)
		b.WriteString("\n\nContext:")
		for _, c := range kept {
			b.WriteString("\n---\n")
			b.WriteString(c.Chunk.Content)
		}
		b.WriteString("\n---")
		messages = append(messages, ai.TextMessage("system", b.String()))
	}

	history := in.History
	if len(history) > a.maxHistory {
		history = history[len(history)-a.maxHistory:]
	}
	for _, turn := range history {
		role := turn.Role
		if role == "" {
			role = model.RoleUser
		}
		messages = append(messages, ai.TextMessage(role, turn.Content))
	}

	if in.Image != nil {
		messages = append(messages, ai.ImageMessage(model.RoleUser, in.Message, in.Image.MIMEType, in.Image.Base64))
	} else {
		messages = append(messages, ai.TextMessage(model.RoleUser, in.Message))
	}
	return messages
}

// fitBudget keeps chunks from the most relevant down until the character
// budget is exhausted.
func (a *Assembler) fitBudget(chunks []retrieval.ScoredChunk) []retrieval.ScoredChunk {
	var kept []retrieval.ScoredChunk
	used := 0
	for _, c := range chunks {
		size := len([]rune(c.Chunk.Content))
		if used+size > a.contextBudget {
			break
		}
		kept = append(kept, c)
		used += size
	}
	return kept
}
