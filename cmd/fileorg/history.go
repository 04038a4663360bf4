package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded operation batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			history, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			batches, err := history.ListBatches(ctx, limit)
			if err != nil {
				return err
			}

			if len(batches) == 0 {
				fmt.Println(cli.InfoStyle.Render("No history yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			for _, batch := range batches {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					batch.CreatedAt.Format("2006-01-02 15:04:05"),
					batch.ID,
					batch.Description)
				for _, op := range batch.Operations {
					dest := op.DestinationPath
					if dest == "" {
						dest = "-"
					}
					fmt.Fprintf(w, "  %s\t%s -> %s\t%s\n", op.OperationType, op.SourcePath, dest, op.Status)
				}
			}

			return nil
		},
	}

	cmd.AddCommand(clearHistoryCmd())
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of batches to show")

	return cmd
}

func clearHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history and reclaim backup space",
		Long: `Remove every recorded batch and delete the backup files kept for undo.
After clearing, past operations can no longer be reversed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			history, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			if err := history.ClearHistory(ctx); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("history cleared"))
			return nil
		},
	}
}
