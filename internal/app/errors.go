package app

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedFile  = errors.New("unsupported file type")
	ErrDocumentNotFound = errors.New("document not found")
	ErrJobEnqueue       = errors.New("index job enqueue failed")
)
