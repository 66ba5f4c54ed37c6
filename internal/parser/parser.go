// Package parser turns raw WhatsApp chat export lines into domain messages.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

// lineRe matches "M/D/YY, H:MM - Sender: content" with 24-hour time.
var lineRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2}),\s(\d{1,2}:\d{2})\s-\s([^:]+):\s(.+)$`)

// encryptionNotice is the system banner WhatsApp prepends to every export.
const encryptionNotice = "Messages and calls are end-to-end encrypted"

const timestampLayout = "1/2/06 15:04"

// ParseLine parses a single export line. Returns ok=false for lines that do
// not match the message pattern or whose timestamp does not parse; callers
// skip those and continue.
func ParseLine(line string) (domain.Message, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return domain.Message{}, false
	}

	ts, err := time.Parse(timestampLayout, m[1]+" "+m[2])
	if err != nil {
		return domain.Message{}, false
	}

	msg, err := domain.NewMessage(ts, strings.TrimSpace(m[3]), strings.TrimSpace(m[4]))
	if err != nil {
		return domain.Message{}, false
	}
	return msg, true
}

// ParseReader scans a whole export. Blank lines and the encryption notice are
// dropped silently; other unparseable lines are reported via onSkip (may be
// nil) and dropped.
func ParseReader(r io.Reader, onSkip func(line string)) ([]domain.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var messages []domain.Message
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.Contains(line, encryptionNotice) {
			continue
		}

		msg, ok := ParseLine(line)
		if !ok {
			if onSkip != nil {
				onSkip(line)
			}
			continue
		}
		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan export: %w", err)
	}
	return messages, nil
}
