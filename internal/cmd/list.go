package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), listTags)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List all categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), listCategories)
	},
}

type listKind int

const (
	listTags listKind = iota
	listCategories
)

func runList(ctx context.Context, kind listKind) error {
	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var values []string
	switch kind {
	case listTags:
		values, err = st.ListTags(ctx)
	case listCategories:
		values, err = st.ListCategories(ctx)
	}
	if err != nil {
		return err
	}

	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}
