package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/runger/cmdbox/internal/projecttype"
	"github.com/runger/cmdbox/internal/store"
)

var (
	addDescription string
	addTags        []string
	addOS          string
	addProjectType string
	addCategory    string
	addContext     string
)

var addCmd = &cobra.Command{
	Use:   "add <command>",
	Short: "Save a command",
	Long: `Save a command with optional metadata.

Secrets in the command text (passwords, tokens, URL credentials) are
obfuscated before storing. When --os or --project-type are omitted they
are filled in automatically from the current system and directory.

Examples:
  cmdbox add "docker ps -a" -d "list all containers" -t docker
  cmdbox add "terraform plan" --category infra --project-type terraform`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "what the command does")
	addCmd.Flags().StringArrayVarP(&addTags, "tag", "t", nil, "tag (repeatable)")
	addCmd.Flags().StringVar(&addOS, "os", "", "operating system (default: current)")
	addCmd.Flags().StringVar(&addProjectType, "project-type", "", "project type (default: detected from cwd)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category")
	addCmd.Flags().StringVar(&addContext, "context", "", "free-form context note")
}

func runAdd(cmd *cobra.Command, args []string) error {
	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	osName := addOS
	if osName == "" {
		osName = runtime.GOOS
	}
	projType := addProjectType
	if projType == "" {
		projType = projecttype.DetectCwd()
	}

	record := &store.Command{
		Command:     args[0],
		Description: addDescription,
		Tags:        addTags,
		OS:          optionalValue(osName),
		ProjectType: optionalValue(projType),
		Category:    optionalValue(addCategory),
		Context:     optionalValue(addContext),
	}

	id, err := st.Add(cmd.Context(), record)
	if err != nil {
		return err
	}

	fmt.Printf("Saved %s\n", id)
	return nil
}

func optionalValue(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
