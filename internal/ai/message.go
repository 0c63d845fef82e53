package ai

import "fmt"

// ChatMessage is one OpenAI-compatible chat message. Content is either a
// plain string (text-only) or a []ContentPart (multimodal).
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal message content array.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// TextMessage builds a text-only message.
func TextMessage(role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// ImageMessage builds a user message carrying text plus an inline image as
// a base64 data URI.
func ImageMessage(role, text, mimeType, base64Data string) ChatMessage {
	return ChatMessage{
		Role: role,
		Content: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data),
			}},
		},
	}
}
