// Package store provides SQLite-backed persistence for saved commands.
// It owns all database access; the search engine only ever sees plain
// Command values materialized here.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for callers to branch on.
var (
	// ErrNotFound is returned when a command id does not exist.
	ErrNotFound = errors.New("command not found")

	// ErrUnavailable wraps any database I/O failure. Callers surface it
	// as a failure of the whole operation; nothing here retries.
	ErrUnavailable = errors.New("store unavailable")
)

// Store defines the persistence operations the CLI and RPC surfaces use.
type Store interface {
	// Add persists a new command and returns its generated id.
	// Secrets in the command text are obfuscated before storage.
	Add(ctx context.Context, cmd *Command) (string, error)

	// Get returns a command by id and records the access: use_count is
	// incremented and last_used set. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Command, error)

	// Delete removes a command. The bool reports whether a row existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Candidates returns commands matching every supplied filter, bounded
	// by the filter's candidate cap. Results carry no ordering contract.
	Candidates(ctx context.Context, f Filter) ([]Command, error)

	// ListTags returns all distinct tag names, sorted.
	ListTags(ctx context.Context) ([]string, error)

	// ListCategories returns all distinct categories, sorted.
	ListCategories(ctx context.Context) ([]string, error)

	Close() error
}

// Command is a saved shell command with its metadata. Optional metadata
// uses pointers so "absent" stays distinct from an empty string in the
// database, though matching treats the two identically.
type Command struct {
	ID          string
	Command     string
	Description string
	Tags        []string
	OS          *string
	ProjectType *string
	Category    *string
	Context     *string
	CreatedAt   time.Time
	LastUsed    *time.Time
	UseCount    int64
}

// Filter selects candidate commands by exact metadata filters. All
// supplied filters must match (AND semantics); a tag filter requires
// every listed tag to be present on the record.
type Filter struct {
	OS          string
	ProjectType string
	Category    string
	Tags        []string

	// Substring is a case-insensitive text filter on command and
	// description. It is only set for non-fuzzy searches; fuzzy text
	// matching happens in the ranking engine, not here.
	Substring string

	// MaxCandidates caps how many rows are materialized for scoring.
	// Zero means DefaultMaxCandidates.
	MaxCandidates int
}

// DefaultMaxCandidates bounds the candidate set handed to the ranking
// engine when the filter does not specify its own cap.
const DefaultMaxCandidates = 1000
