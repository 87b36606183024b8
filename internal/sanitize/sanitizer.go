package sanitize

import "strings"

// Sanitizer applies the secret patterns to input text.
type Sanitizer struct {
	patterns []Pattern
}

// NewSanitizer creates a Sanitizer with the default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{patterns: GetSecretPatterns()}
}

// NewSanitizerWithPatterns creates a Sanitizer with custom patterns.
func NewSanitizerWithPatterns(patterns []Pattern) *Sanitizer {
	return &Sanitizer{patterns: patterns}
}

// Sanitize replaces any recognized secret in input with a placeholder and
// trims trailing whitespace left behind by a replacement.
func (s *Sanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, p := range s.patterns {
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return strings.TrimRight(result, " \t")
}

// DefaultSanitizer is a package-level sanitizer for convenience.
var DefaultSanitizer = NewSanitizer()

// Sanitize runs the default sanitizer on input.
func Sanitize(input string) string {
	return DefaultSanitizer.Sanitize(input)
}
