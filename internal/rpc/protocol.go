// Package rpc implements the line-delimited JSON protocol cmdbox speaks
// over stdio or a unix socket. One request per line in, one response per
// line out:
//
//	{"id": 1, "method": "search_commands", "params": {"query": "doker"}}
//	{"id": 1, "result": [...]}
//
// A failed call answers with {"id": 1, "error": "..."} and the
// connection stays open for the next request.
package rpc

import (
	"encoding/json"
	"time"

	"github.com/runger/cmdbox/internal/rank"
	"github.com/runger/cmdbox/internal/store"
)

// Request is a single incoming call. ID is echoed back untouched and may
// be any JSON value; requests without one get a response without one.
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the reply to one Request. Exactly one of Result and Error
// is set.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// searchParams mirrors the search_commands request body.
type searchParams struct {
	Query       string   `json:"query"`
	OS          string   `json:"os,omitempty"`
	ProjectType string   `json:"project_type,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Fuzzy       *bool    `json:"fuzzy,omitempty"` // default true
	Limit       int      `json:"limit,omitempty"` // default from config
}

// addParams mirrors the add_command request body.
type addParams struct {
	Command     string   `json:"command"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	OS          string   `json:"os,omitempty"`
	ProjectType string   `json:"project_type,omitempty"`
	Category    string   `json:"category,omitempty"`
	Context     string   `json:"context,omitempty"`
}

// idParams is shared by get_command and delete_command.
type idParams struct {
	ID string `json:"id"`
}

// CommandJSON is the wire form of a stored command: string id, ISO-8601
// timestamps, optional fields omitted when absent.
type CommandJSON struct {
	ID          string   `json:"id"`
	Command     string   `json:"command"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	OS          *string  `json:"os,omitempty"`
	ProjectType *string  `json:"project_type,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Context     *string  `json:"context,omitempty"`
	CreatedAt   string   `json:"created_at"`
	LastUsed    *string  `json:"last_used,omitempty"`
	UseCount    int64    `json:"use_count"`
}

// SearchResultJSON is one search_commands hit.
type SearchResultJSON struct {
	CommandJSON
	Score float64 `json:"score"`
}

func encodeCommand(c store.Command) CommandJSON {
	out := CommandJSON{
		ID:          c.ID,
		Command:     c.Command,
		Description: c.Description,
		Tags:        c.Tags,
		OS:          c.OS,
		ProjectType: c.ProjectType,
		Category:    c.Category,
		Context:     c.Context,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UseCount:    c.UseCount,
	}
	if c.LastUsed != nil {
		s := c.LastUsed.UTC().Format(time.RFC3339)
		out.LastUsed = &s
	}
	return out
}

func encodeResults(results []rank.Result) []SearchResultJSON {
	out := make([]SearchResultJSON, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResultJSON{
			CommandJSON: encodeCommand(r.Command),
			Score:       r.Score,
		})
	}
	return out
}
