package extractor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const utf8BOM = "\ufeff"

// ReadTranscript reads an uploaded export and decodes it as UTF-8.
func ReadTranscript(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}
