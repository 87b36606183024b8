// Package rank implements the fuzzy ranking engine. Given a query and a
// snapshot of candidate commands it scores each candidate against the
// command text, description, and tags, filters by a relevance threshold,
// and returns a deterministic, fully ordered top-N.
//
// Everything here is pure computation over in-memory data: no I/O, no
// mutation of the candidates, safe for concurrent use.
package rank

import (
	"errors"
	"sort"
	"strings"

	"github.com/runger/cmdbox/internal/cmdutil"
	"github.com/runger/cmdbox/internal/fuzzy"
	"github.com/runger/cmdbox/internal/store"
)

// ErrInvalidLimit is returned when the caller supplies a non-positive
// result limit. The engine imposes no default of its own.
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// Default scoring parameters. The field weights reflect relevance
// priority: a hit in the command text matters most, tags least.
const (
	DefaultCommandWeight     = 0.6
	DefaultDescriptionWeight = 0.25
	DefaultTagWeight         = 0.15

	// DefaultThreshold excludes candidates whose aggregate score falls
	// below it, so unrelated queries return nothing instead of noise.
	DefaultThreshold = 0.3

	// DefaultContainmentFloor is the minimum field similarity granted
	// when one normalized string contains the other, so short queries
	// against long commands are not penalized purely by length.
	DefaultContainmentFloor = 0.75
)

// Config holds the tunable scoring parameters.
type Config struct {
	CommandWeight     float64
	DescriptionWeight float64
	TagWeight         float64
	Threshold         float64
	ContainmentFloor  float64
}

// DefaultConfig returns the documented default parameters.
func DefaultConfig() Config {
	return Config{
		CommandWeight:     DefaultCommandWeight,
		DescriptionWeight: DefaultDescriptionWeight,
		TagWeight:         DefaultTagWeight,
		Threshold:         DefaultThreshold,
		ContainmentFloor:  DefaultContainmentFloor,
	}
}

// Result pairs a candidate with its aggregate score in [0, 1].
type Result struct {
	Command store.Command
	Score   float64
}

// Engine scores and orders candidates. The zero value is not usable;
// construct with New.
type Engine struct {
	cfg Config
}

// New creates an Engine, falling back to defaults for unset parameters.
func New(cfg Config) *Engine {
	if cfg.CommandWeight <= 0 && cfg.DescriptionWeight <= 0 && cfg.TagWeight <= 0 {
		cfg.CommandWeight = DefaultCommandWeight
		cfg.DescriptionWeight = DefaultDescriptionWeight
		cfg.TagWeight = DefaultTagWeight
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.ContainmentFloor <= 0 {
		cfg.ContainmentFloor = DefaultContainmentFloor
	}
	return &Engine{cfg: cfg}
}

// Rank fuzzy-scores candidates against query and returns the top results,
// ordered by score descending with deterministic tie-breaks. An empty
// query skips text scoring entirely: every candidate passes with score
// 1.0, which supports browse-by-filter usage.
func (e *Engine) Rank(query string, candidates []store.Command, limit int) ([]Result, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	q := cmdutil.Normalize(query)

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		var score float64
		if q == "" {
			score = 1.0
		} else {
			score = e.aggregate(q, c)
			if score < e.cfg.Threshold {
				continue
			}
		}
		results = append(results, Result{Command: c, Score: score})
	}

	sortResults(results)
	return truncate(results, limit), nil
}

// Filter is the non-fuzzy path: case-insensitive substring containment on
// the command and description fields only. Scoring is binary, which keeps
// exact search simple and predictable; a misspelled query matches nothing
// here.
func (e *Engine) Filter(query string, candidates []store.Command, limit int) ([]Result, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	q := cmdutil.Normalize(query)

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if q != "" &&
			!strings.Contains(cmdutil.Normalize(c.Command), q) &&
			!strings.Contains(cmdutil.Normalize(c.Description), q) {
			continue
		}
		results = append(results, Result{Command: c, Score: 1.0})
	}

	sortResults(results)
	return truncate(results, limit), nil
}

// aggregate computes the weighted multi-field score for one candidate.
// The tag score is the best single-tag similarity: one matching tag is as
// useful as all of them matching.
func (e *Engine) aggregate(q string, c store.Command) float64 {
	cmdScore := e.fieldSimilarity(q, cmdutil.Normalize(c.Command))
	descScore := e.fieldSimilarity(q, cmdutil.Normalize(c.Description))

	tagScore := 0.0
	for _, tag := range c.Tags {
		if s := e.fieldSimilarity(q, cmdutil.Normalize(tag)); s > tagScore {
			tagScore = s
		}
	}

	score := cmdScore*e.cfg.CommandWeight +
		descScore*e.cfg.DescriptionWeight +
		tagScore*e.cfg.TagWeight
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

// fieldSimilarity scores a normalized query against a normalized field
// value. It takes the best of three signals:
//
//   - whole-string edit-distance similarity,
//   - the containment floor when either string contains the other,
//   - the best per-token similarity, so a typo'd single word still
//     matches one word of a multi-word command instead of being diluted
//     by the full command length.
//
// Empty fields always score 0.
func (e *Engine) fieldSimilarity(q, field string) float64 {
	if field == "" {
		return 0.0
	}

	best := fuzzy.Similarity(q, field)

	if strings.Contains(field, q) || strings.Contains(q, field) {
		if e.cfg.ContainmentFloor > best {
			best = e.cfg.ContainmentFloor
		}
	}

	for _, token := range cmdutil.Tokens(field) {
		if s := fuzzy.Similarity(q, token); s > best {
			best = s
		}
	}

	return best
}

// sortResults applies the total order: score descending, then use_count
// descending, then last_used descending with nulls last, then id
// ascending so equal-rank results never reorder between calls.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Command.UseCount != b.Command.UseCount {
			return a.Command.UseCount > b.Command.UseCount
		}
		switch {
		case a.Command.LastUsed != nil && b.Command.LastUsed == nil:
			return true
		case a.Command.LastUsed == nil && b.Command.LastUsed != nil:
			return false
		case a.Command.LastUsed != nil && b.Command.LastUsed != nil:
			if !a.Command.LastUsed.Equal(*b.Command.LastUsed) {
				return a.Command.LastUsed.After(*b.Command.LastUsed)
			}
		}
		return a.Command.ID < b.Command.ID
	})
}

func truncate(results []Result, limit int) []Result {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
