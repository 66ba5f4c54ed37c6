package domain

import "errors"

var (
	// ErrVectorDimMismatch signals that an embedding does not match the
	// dimensionality the store index was created with.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrCompletionProvider signals a chat-completion provider failure.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrInvalidMessage signals a malformed chat message.
	ErrInvalidMessage = errors.New("invalid message")
)
