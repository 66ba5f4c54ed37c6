package domain

import (
	"fmt"
	"time"
)

// Message is a single parsed chat message (immutable value object).
// The vector is attached once, when the message is embedded for indexing.
type Message struct {
	timestamp time.Time
	sender    string
	content   string
	vector    []float32
}

// NewMessage validates and creates a Message.
func NewMessage(timestamp time.Time, sender, content string) (Message, error) {
	if timestamp.IsZero() {
		return Message{}, fmt.Errorf("timestamp is required: %w", ErrInvalidMessage)
	}
	if sender == "" {
		return Message{}, fmt.Errorf("sender is required: %w", ErrInvalidMessage)
	}
	if content == "" {
		return Message{}, fmt.Errorf("content is required: %w", ErrInvalidMessage)
	}
	return Message{timestamp: timestamp, sender: sender, content: content}, nil
}

// ReconstructMessage creates a Message without validation (storage hydration).
func ReconstructMessage(timestamp time.Time, sender, content string, vector []float32) Message {
	return Message{timestamp: timestamp, sender: sender, content: content, vector: vector}
}

// Timestamp returns when the message was sent.
func (m *Message) Timestamp() time.Time { return m.timestamp }

// Sender returns the message sender.
func (m *Message) Sender() string { return m.sender }

// Content returns the message text.
func (m *Message) Content() string { return m.content }

// Vector returns the embedding vector, nil until embedded.
func (m *Message) Vector() []float32 { return m.vector }

// WithVector returns a copy with the embedding vector attached.
func (m *Message) WithVector(v []float32) Message {
	return Message{timestamp: m.timestamp, sender: m.sender, content: m.content, vector: v}
}
