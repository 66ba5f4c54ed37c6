package parser

import (
	"strings"
	"testing"
	"time"
)

func TestParseLine_Valid(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantTime    time.Time
		wantSender  string
		wantContent string
	}{
		{
			name:        "plain message",
			line:        "1/15/24, 18:30 - Alice: see you at the station",
			wantTime:    time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC),
			wantSender:  "Alice",
			wantContent: "see you at the station",
		},
		{
			name:        "single digit hour",
			line:        "3/2/23, 9:05 - Bob: morning",
			wantTime:    time.Date(2023, 3, 2, 9, 5, 0, 0, time.UTC),
			wantSender:  "Bob",
			wantContent: "morning",
		},
		{
			name:        "sender with spaces trimmed",
			line:        "12/31/22, 23:59 -  Alice Smith : happy new year!",
			wantTime:    time.Date(2022, 12, 31, 23, 59, 0, 0, time.UTC),
			wantSender:  "Alice Smith",
			wantContent: "happy new year!",
		},
		{
			name:        "content keeps inner punctuation",
			line:        "5/1/24, 12:00 - Bob: check http example, ok?",
			wantTime:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			wantSender:  "Bob",
			wantContent: "check http example, ok?",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := ParseLine(tc.line)
			if !ok {
				t.Fatalf("ParseLine(%q) returned ok=false", tc.line)
			}
			if !msg.Timestamp().Equal(tc.wantTime) {
				t.Errorf("timestamp = %v, want %v", msg.Timestamp(), tc.wantTime)
			}
			if msg.Sender() != tc.wantSender {
				t.Errorf("sender = %q, want %q", msg.Sender(), tc.wantSender)
			}
			if msg.Content() != tc.wantContent {
				t.Errorf("content = %q, want %q", msg.Content(), tc.wantContent)
			}
		})
	}
}

func TestParseLine_NoMatch(t *testing.T) {
	lines := []string{
		"",
		"just some text without a header",
		"1/15/24, 18:30 - Alice changed the group description",
		"2024-01-15 18:30 - Alice: wrong date format",
		"1/15/24 18:30 - Alice: missing comma",
		"13/45/24, 18:30 - Alice: impossible date",
	}
	for _, line := range lines {
		if _, ok := ParseLine(line); ok {
			t.Errorf("ParseLine(%q) = ok, want no record", line)
		}
	}
}

func TestParseReader(t *testing.T) {
	export := strings.Join([]string{
		"1/15/24, 18:30 - Messages and calls are end-to-end encrypted. No one outside of this chat can read them.",
		"1/15/24, 18:31 - Alice: are you coming tonight",
		"",
		"this is a continuation line that does not match",
		"1/15/24, 18:32 - Bob: yes, leaving in ten minutes",
	}, "\n")

	var skipped []string
	msgs, err := ParseReader(strings.NewReader(export), func(line string) {
		skipped = append(skipped, line)
	})
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender() != "Alice" || msgs[1].Sender() != "Bob" {
		t.Errorf("unexpected senders: %q, %q", msgs[0].Sender(), msgs[1].Sender())
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped line, got %d: %v", len(skipped), skipped)
	}
	if !strings.HasPrefix(skipped[0], "this is a continuation") {
		t.Errorf("unexpected skipped line: %q", skipped[0])
	}
}
