package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved command",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no command with id %s", args[0])
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
