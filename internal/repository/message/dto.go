package message

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hegdeshashank73/chat-analyser/internal/db"
	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

// messageID derives a deterministic document ID from the message identity
// fields, so re-indexing the same export overwrites instead of duplicating.
func messageID(msg domain.Message) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(msg.Timestamp().Unix(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(msg.Sender()))
	h.Write([]byte{0})
	h.Write([]byte(msg.Content()))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// buildHashFields converts a domain Message into a flat map[string]string for HSET.
func buildHashFields(msg domain.Message) map[string]string {
	return map[string]string{
		"__content": msg.Content(),
		"__vector":  vectorToBytes(msg.Vector()),
		"sender":    msg.Sender(),
		"timestamp": strconv.FormatInt(msg.Timestamp().Unix(), 10),
	}
}

// parseHit converts a KNN search entry into a domain Hit.
func parseHit(entry db.SearchEntry) domain.Hit {
	return domain.NewHit(
		entry.Fields["__content"],
		entry.Score,
		entry.Fields["sender"],
		parseTimestamp(entry.Fields["timestamp"]),
	)
}

// parseMessage converts a filter search entry into a domain Message (no vector).
func parseMessage(entry db.SearchEntry) domain.Message {
	return domain.ReconstructMessage(
		parseTimestamp(entry.Fields["timestamp"]),
		entry.Fields["sender"],
		entry.Fields["__content"],
		nil,
	)
}

func parseTimestamp(s string) time.Time {
	unix, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// escapeTag escapes RediSearch TAG query special characters.
var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>",
	"{", "\\{", "}", "\\}", "\"", "\\\"", "'", "\\'",
	":", "\\:", ";", "\\;", "!", "\\!", "@", "\\@",
	"#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)",
	"-", "\\-", "+", "\\+", "=", "\\=", "~", "\\~",
	" ", "\\ ",
)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}
