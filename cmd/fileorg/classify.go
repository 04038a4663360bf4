package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
	"github.com/fileorg/fileorg/internal/scan"
)

func classifyCmd() *cobra.Command {
	var (
		recursive     bool
		includeHidden bool
	)

	cmd := &cobra.Command{
		Use:   "classify <directory>",
		Short: "Classify the files in a directory",
		Long: `Scan a directory and classify every file into a category. Deterministic
rules run first; files they cannot place go to the configured LLM when
enabled, and to the default category otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openConfigStore()
			if err != nil {
				return err
			}
			settings, err := store.LoadSettings()
			if err != nil {
				return err
			}
			categories, err := store.LoadCategories()
			if err != nil {
				return err
			}

			eng, closeEngine, err := buildEngine(settings)
			if err != nil {
				return err
			}
			defer closeEngine()

			scanner := scan.New(nil)
			files, err := scanner.Scan(ctx, scan.Options{
				Path:          args[0],
				Recursive:     recursive,
				IncludeHidden: includeHidden,
			}, nil)
			if err != nil {
				return err
			}

			if len(files) == 0 {
				fmt.Println(cli.InfoStyle.Render("No files to classify."))
				return nil
			}

			results, err := eng.ClassifyBatch(ctx, files, categories)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "FILE\tCATEGORY\tCONFIDENCE\tSOURCE\n")
			for i, result := range results {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n",
					files[i].Name, result.SuggestedCategory, result.Confidence, result.Source)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files")

	return cmd
}
