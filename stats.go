package huffpack

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

const defaultPreviewBytes = 100

// Stats compares a text with its compressed form.
type Stats struct {
	OriginalSize   int     `json:"original_size"`
	CompressedSize int     `json:"compressed_size"`
	Rate           float64 `json:"compression_rate"` // may be negative when the output grew
	Savings        int     `json:"savings"`
	Algorithm      string  `json:"algorithm"`
}

// TextStats summarizes a text.
type TextStats struct {
	Length int `json:"length"` // code points
	Bytes  int `json:"size_bytes"`
	Lines  int `json:"lines"`
	Words  int `json:"words"`
}

// compressionRate returns the percentage saved, clamped at zero.
func compressionRate(original, compressed int) float64 {
	if original == 0 {
		return 0
	}
	return max(0, rawRate(original, compressed))
}

func rawRate(original, compressed int) float64 {
	if original == 0 {
		return 0
	}
	return (1 - float64(compressed)/float64(original)) * 100
}

// Stats reports sizes for text and its compressed form. Unlike Result.Rate the
// rate here is not clamped, so growth shows up as a negative value.
func (m *Manager) Stats(text string, data []byte) Stats {
	return Stats{
		OriginalSize:   len(text),
		CompressedSize: len(data),
		Rate:           rawRate(len(text), len(data)),
		Savings:        len(text) - len(data),
		Algorithm:      m.current,
	}
}

// Preview renders up to limit leading bytes of data as base64, with "..." when
// data was cut. A non-positive limit uses 100 bytes.
func Preview(data []byte, limit int) string {
	if len(data) == 0 {
		return ""
	}
	if limit <= 0 {
		limit = defaultPreviewBytes
	}
	suffix := ""
	if len(data) > limit {
		data = data[:limit]
		suffix = "..."
	}
	return "base64: " + base64.StdEncoding.EncodeToString(data) + suffix
}

// Summarize counts code points, bytes, lines and whitespace-separated words.
func Summarize(text string) TextStats {
	if text == "" {
		return TextStats{}
	}
	return TextStats{
		Length: utf8.RuneCountInString(text),
		Bytes:  len(text),
		Lines:  strings.Count(text, "\n") + 1,
		Words:  len(strings.Fields(text)),
	}
}
