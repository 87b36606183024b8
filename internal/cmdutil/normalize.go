// Package cmdutil provides shared helpers for working with command text.
package cmdutil

import (
	"strings"

	"github.com/google/shlex"
)

// Normalize prepares a string for case-insensitive matching: trimmed and
// lowercased. Fuzzy scoring and substring search both operate on
// normalized text.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokens splits a command line into its words. Quoted arguments are kept
// intact via POSIX shell splitting; input with unbalanced quotes falls
// back to whitespace splitting rather than failing.
func Tokens(cmd string) []string {
	tokens, err := shlex.Split(cmd)
	if err == nil && len(tokens) > 0 {
		return tokens
	}
	return strings.Fields(cmd)
}

// FirstToken returns the leading word of a command, typically the program
// name, or "" for blank input.
func FirstToken(cmd string) string {
	tokens := Tokens(cmd)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}
