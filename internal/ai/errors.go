package ai

import "fmt"

// GenerationErrorKind separates failures we may retry from ones we must not.
type GenerationErrorKind string

const (
	// KindRetryable covers timeouts, rate limits and upstream 5xx.
	KindRetryable GenerationErrorKind = "retryable"
	// KindTerminal covers invalid requests and content-policy rejections.
	KindTerminal GenerationErrorKind = "terminal"
)

// GenerationError is the typed failure of a completion call.
type GenerationError struct {
	Kind    GenerationErrorKind
	Status  int
	Message string
}

func (e *GenerationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation failed (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Message)
}

func (e *GenerationError) Retryable() bool {
	return e.Kind == KindRetryable
}

func classifyStatus(status int, body string) *GenerationError {
	kind := KindTerminal
	if status == 429 || status >= 500 {
		kind = KindRetryable
	}
	return &GenerationError{Kind: kind, Status: status, Message: body}
}
