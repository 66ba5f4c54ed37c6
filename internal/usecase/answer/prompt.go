package answer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

// SystemPrompt frames the completion model as a context-bound assistant.
const SystemPrompt = "You are a helpful assistant that answers questions based on the provided context. " +
	"If the context doesn't contain enough information, clearly state that."

const promptEncoding = "cl100k_base"

// PromptBuilder assembles the user prompt from retrieved chat messages,
// keeping the context block within a token budget.
type PromptBuilder struct {
	enc              *tiktoken.Tiktoken
	maxContextTokens int
	participants     []string
}

// NewPromptBuilder creates a prompt builder. participants optionally names the
// two people in the chat transcript for the prompt preamble.
func NewPromptBuilder(maxContextTokens int, participants []string) (*PromptBuilder, error) {
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", promptEncoding, err)
	}
	return &PromptBuilder{
		enc:              enc,
		maxContextTokens: maxContextTokens,
		participants:     participants,
	}, nil
}

// Build renders the user prompt. Hits are taken closest-first and dropped from
// the far end when the context block would exceed the token budget. The
// question itself is never dropped.
func (b *PromptBuilder) Build(query string, hits []domain.Hit) string {
	ordered := make([]domain.Hit, len(hits))
	copy(ordered, hits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Distance() < ordered[j].Distance()
	})

	var contexts []string
	used := 0
	for _, h := range ordered {
		n := b.countTokens(h.Content())
		if len(contexts) > 0 && used+n > b.maxContextTokens {
			break
		}
		contexts = append(contexts, h.Content())
		used += n
	}

	return fmt.Sprintf(`Please answer the question based on the following context:

Context:
%s

Question: %s

Please provide a detailed answer using only the information from the given context. %s If the context doesn't contain enough information to answer the question, please state that explicitly.`,
		strings.Join(contexts, "\n\n"), query, b.transcriptSentence())
}

// CountTokens reports the cl100k_base token count of a text.
func (b *PromptBuilder) CountTokens(text string) int {
	return b.countTokens(text)
}

func (b *PromptBuilder) countTokens(text string) int {
	return len(b.enc.Encode(text, nil, nil))
}

func (b *PromptBuilder) transcriptSentence() string {
	if len(b.participants) == 2 {
		return fmt.Sprintf("The provided context is the chat transcript between %s and %s.",
			b.participants[0], b.participants[1])
	}
	return "The provided context is a personal chat transcript."
}
