package domain

import "time"

// Hit is a single nearest-neighbor match. Distance is the raw cosine distance
// reported by the store: lower means more similar. Ephemeral, never persisted.
type Hit struct {
	content   string
	distance  float64
	sender    string
	timestamp time.Time
}

// NewHit creates a search hit.
func NewHit(content string, distance float64, sender string, timestamp time.Time) Hit {
	return Hit{content: content, distance: distance, sender: sender, timestamp: timestamp}
}

// Content returns the matched message text.
func (h *Hit) Content() string { return h.content }

// Distance returns the cosine distance to the query vector.
func (h *Hit) Distance() float64 { return h.distance }

// Sender returns the sender of the matched message.
func (h *Hit) Sender() string { return h.sender }

// Timestamp returns when the matched message was sent.
func (h *Hit) Timestamp() time.Time { return h.timestamp }
