// Package cmd implements the cmdbox command-line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/cmdbox/internal/config"
	"github.com/runger/cmdbox/internal/rank"
	"github.com/runger/cmdbox/internal/search"
	"github.com/runger/cmdbox/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cmdbox",
	Short: "personal store for shell commands",
	Long: `cmdbox - a personal store for shell commands

Save commands with descriptions and tags, then find them again with
typo-tolerant search:

  cmdbox add "docker ps -a" -d "list all containers" -t docker
  cmdbox search doker`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureColors()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore loads the configuration and opens the database. The caller
// owns the returned store and must Close it.
func openStore() (*config.Config, *store.SQLiteStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	dbPath := cfg.Store.DBPath
	if dbPath == "" {
		paths := config.DefaultPaths()
		if err := paths.EnsureBaseDir(); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dbPath = paths.DatabaseFile()
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// newSearcher wires the ranking engine from config.
func newSearcher(cfg *config.Config, st store.Store) *search.Searcher {
	engine := rank.New(rank.Config{
		CommandWeight:     cfg.Search.CommandWeight,
		DescriptionWeight: cfg.Search.DescriptionWeight,
		TagWeight:         cfg.Search.TagWeight,
		Threshold:         cfg.Search.Threshold,
		ContainmentFloor:  cfg.Search.ContainmentFloor,
	})
	return search.New(st, engine, cfg.Store.MaxCandidates)
}
