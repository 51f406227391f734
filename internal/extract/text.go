package extract

import "strings"

// extractPlain passes text files through, scrubbing invalid UTF-8 and NULs
// that would poison JSON serialization downstream.
func extractPlain(data []byte) (string, error) {
	text := strings.ToValidUTF8(string(data), "�")
	text = strings.ReplaceAll(text, "\x00", "")
	return text, nil
}
