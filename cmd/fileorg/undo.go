package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
	"github.com/fileorg/fileorg/internal/executor"
	"github.com/fileorg/fileorg/internal/model"
)

func undoCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent operation batches",
		Long: `Reverse the most recent batches of file operations, most recent first.
Each batch is reversed as a unit; members whose backups are missing or
whose destinations were modified externally are reported and skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			history, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			exec := executor.New(history, nil)
			reversed, err := exec.Undo(ctx, steps)
			if err != nil {
				return err
			}

			if len(reversed) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to undo."))
				return nil
			}

			undone, failed := 0, 0
			for _, op := range reversed {
				if op.Status == model.StatusUndone {
					undone++
					fmt.Printf("  %s %s restored\n", op.OperationType, op.SourcePath)
				} else {
					failed++
					fmt.Println(cli.FormatError(fmt.Sprintf("%s %s: %s", op.OperationType, op.SourcePath, op.Error)))
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d operations undone, %d could not be reversed", undone, failed)))
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of batches to undo")

	return cmd
}
