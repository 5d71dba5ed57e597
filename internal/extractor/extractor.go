package extractor

import (
	"strings"
	"unicode"
)

// Extractor pulls per-participant messages out of a chat export using an
// ordered list of line patterns.
type Extractor struct {
	patterns []Pattern
}

// New returns an extractor over patterns, or DefaultPatterns when none are given.
func New(patterns ...Pattern) *Extractor {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	p := make([]Pattern, len(patterns))
	copy(p, patterns)
	return &Extractor{patterns: p}
}

var defaultExtractor = New()

// Extract returns the bodies of every message sent by targetName, in file order.
func Extract(raw, targetName string) ([]string, error) {
	return defaultExtractor.Extract(raw, targetName)
}

// ParseLines returns every recognized line using DefaultPatterns.
func ParseLines(raw string) []Line {
	return defaultExtractor.ParseLines(raw)
}

// Senders lists distinct senders using DefaultPatterns.
func Senders(raw string) []string {
	return defaultExtractor.Senders(raw)
}

// Extract returns the trimmed bodies attributed to targetName. Names are
// compared after NormalizeName on both sides. Lines no pattern recognizes are
// dropped, so multi-line messages keep only their first line.
func (e *Extractor) Extract(raw, targetName string) ([]string, error) {
	// A name with no letters or digits, such as an emoji-only contact,
	// normalizes to "" and still matches senders that do the same.
	key := NormalizeName(targetName)

	var msgs []string
	for _, l := range e.ParseLines(raw) {
		if NormalizeName(l.Sender) != key {
			continue
		}
		msgs = append(msgs, l.Body)
	}

	if len(msgs) == 0 {
		return nil, &NotFoundError{Target: targetName}
	}
	return msgs, nil
}

// ParseLines returns every line matched by one of the extractor's patterns.
// Lines whose body is blank after trimming are skipped.
func (e *Extractor) ParseLines(raw string) []Line {
	var out []Line
	for _, line := range splitLines(raw) {
		for _, p := range e.patterns {
			sender, body, ok := p.Match(line)
			if !ok {
				continue
			}
			body = strings.TrimSpace(body)
			if body != "" {
				out = append(out, Line{Sender: sender, Body: body, Pattern: p.Name})
			}
			break
		}
	}
	return out
}

// Senders returns the distinct sender names in order of first appearance,
// deduplicated by normalized key.
func (e *Extractor) Senders(raw string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range e.ParseLines(raw) {
		key := NormalizeName(l.Sender)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, strings.TrimSpace(l.Sender))
	}
	return names
}

// NormalizeName drops every rune that is not a letter, number or underscore
// and lowercases the rest. It is idempotent.
func NormalizeName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// splitLines splits on the same boundaries as a universal-newline reader,
// including the Unicode line and paragraph separators. Empty lines are dropped
// since no pattern can match them.
func splitLines(raw string) []string {
	return strings.FieldsFunc(raw, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
