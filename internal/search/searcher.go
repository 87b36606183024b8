// Package search composes candidate retrieval and ranking into the one
// search pipeline both the CLI and the RPC server call.
package search

import (
	"context"
	"fmt"

	"github.com/runger/cmdbox/internal/cmdutil"
	"github.com/runger/cmdbox/internal/rank"
	"github.com/runger/cmdbox/internal/store"
)

// Query is a single search request. Filters are exact-match and combine
// with AND; Tags means the candidate must carry every listed tag. Text is
// fuzzy-scored when Fuzzy is set, otherwise matched as a plain substring.
type Query struct {
	Text        string
	OS          string
	ProjectType string
	Category    string
	Tags        []string
	Fuzzy       bool
	Limit       int
}

// Searcher runs queries against a store through the ranking engine.
type Searcher struct {
	store         store.Store
	engine        *rank.Engine
	maxCandidates int
}

// New creates a Searcher. maxCandidates bounds how many rows a single
// query may pull from the store; non-positive means the store default.
func New(st store.Store, engine *rank.Engine, maxCandidates int) *Searcher {
	if maxCandidates <= 0 {
		maxCandidates = store.DefaultMaxCandidates
	}
	return &Searcher{store: st, engine: engine, maxCandidates: maxCandidates}
}

// Search fetches one candidate snapshot and scores it. The snapshot is
// taken once: scoring never goes back to the store, so a result set is
// internally consistent even while writes land concurrently.
//
// Zero matches is a successful empty slice, not an error.
func (s *Searcher) Search(ctx context.Context, q Query) ([]rank.Result, error) {
	if q.Limit <= 0 {
		return nil, rank.ErrInvalidLimit
	}

	filter := store.Filter{
		OS:            q.OS,
		ProjectType:   q.ProjectType,
		Category:      q.Category,
		Tags:          q.Tags,
		MaxCandidates: s.maxCandidates,
	}
	// In non-fuzzy mode the text filter is pushed down to the store so
	// unrelated rows never cross the wire. Fuzzy mode must see every
	// filter-matching row; a substring pre-filter would drop typo'd hits.
	if !q.Fuzzy {
		filter.Substring = cmdutil.Normalize(q.Text)
	}

	candidates, err := s.store.Candidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	if q.Fuzzy {
		return s.engine.Rank(q.Text, candidates, q.Limit)
	}
	return s.engine.Filter(q.Text, candidates, q.Limit)
}
