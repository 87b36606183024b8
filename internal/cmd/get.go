package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/cmdbox/internal/store"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a saved command",
	Long: `Show the full record for one saved command.

Fetching a command counts as using it: its use_count is incremented and
last_used updated, which nudges it up in future tie-breaks.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	record, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no command with id %s", args[0])
		}
		return err
	}

	renderCommand(record)
	return nil
}
