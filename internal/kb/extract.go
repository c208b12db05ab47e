package kb

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// extractText pulls plain text out of an uploaded document. Plain text
// and markdown need no parsing beyond normalization; markdown syntax is
// left in place since it embeds fine. Non-UTF-8 input is decoded as
// latin-1 rather than rejected.
func extractText(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return strings.TrimSpace(decodeText(data))
	default:
		return ""
	}
}

func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// removeStoredFile deletes the preserved original bytes, tolerating a
// file already gone.
func removeStoredFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
