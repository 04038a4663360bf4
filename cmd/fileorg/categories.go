package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
	"github.com/fileorg/fileorg/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage file categories",
		Long:  `List or reset the categories used to organize files.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(resetCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := openConfigStore()
			if err != nil {
				return err
			}

			categories, err := store.LoadCategories()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "ID\tNAME\tTARGET\tRULES\n")
			for _, cat := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", cat.ID, cat.Name, cat.TargetFolder, len(cat.Rules))
			}

			return nil
		},
	}
}

func resetCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in category set",
		Long:  `Overwrite the categories file with the built-in defaults.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := openConfigStore()
			if err != nil {
				return err
			}

			if err := store.SaveCategories(model.DefaultCategories()); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("categories reset to defaults"))
			return nil
		},
	}
}
