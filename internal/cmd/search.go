package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/cmdbox/internal/rank"
	"github.com/runger/cmdbox/internal/search"
)

var (
	searchOS          string
	searchProjectType string
	searchCategory    string
	searchTags        []string
	searchFuzzy       bool
	searchJSON        bool
	searchLimit       int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search saved commands",
	Long: `Search saved commands with typo-tolerant matching.

Without a query, lists every command matching the filters. With
--fuzzy=false the query is matched as a plain substring instead.

Examples:
  cmdbox search doker                  # typo-tolerant search
  cmdbox search --tag docker           # browse by tag
  cmdbox search --fuzzy=false "git c"  # exact substring
  cmdbox search --json deploy          # machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchOS, "os", "", "filter by operating system")
	searchCmd.Flags().StringVar(&searchProjectType, "project-type", "", "filter by project type")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by category")
	searchCmd.Flags().StringArrayVarP(&searchTags, "tag", "t", nil, "filter by tag, all must match (repeatable)")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", true, "typo-tolerant matching")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
}

type searchResultOutput struct {
	ID          string   `json:"id"`
	Command     string   `json:"command"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Score       float64  `json:"score"`
	UseCount    int64    `json:"use_count"`
	LastUsed    string   `json:"last_used,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	limit := searchLimit
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}

	results, err := newSearcher(cfg, st).Search(cmd.Context(), search.Query{
		Text:        query,
		OS:          searchOS,
		ProjectType: searchProjectType,
		Category:    searchCategory,
		Tags:        searchTags,
		Fuzzy:       searchFuzzy,
		Limit:       limit,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		return writeSearchJSON(results)
	}

	// Zero matches is a normal outcome, exit status stays 0.
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	renderResults(results)
	return nil
}

func writeSearchJSON(results []rank.Result) error {
	output := make([]searchResultOutput, len(results))
	for i, r := range results {
		output[i] = searchResultOutput{
			ID:          r.Command.ID,
			Command:     r.Command.Command,
			Description: r.Command.Description,
			Tags:        r.Command.Tags,
			Score:       r.Score,
			UseCount:    r.Command.UseCount,
		}
		if r.Command.LastUsed != nil {
			output[i].LastUsed = r.Command.LastUsed.UTC().Format(time.RFC3339)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(output)
}
