package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
	"github.com/fileorg/fileorg/internal/executor"
	"github.com/fileorg/fileorg/internal/model"
	"github.com/fileorg/fileorg/internal/planner"
	"github.com/fileorg/fileorg/internal/scan"
)

func organizeCmd() *cobra.Command {
	var (
		recursive     bool
		includeHidden bool
		dryRun        bool
		copyFiles     bool
		into          string
	)

	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Classify files and move them into category folders",
		Long: `Scan a directory, classify every file, and execute the resulting move
operations as one undoable batch. With --into the classification step is
skipped and all files are moved (or copied with --copy) into the given
folder instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root := args[0]

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

			scanner := scan.New(nil)
			files, err := scanner.Scan(ctx, scan.Options{
				Path:          root,
				Recursive:     recursive,
				IncludeHidden: includeHidden,
			}, nil)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to organize."))
				return nil
			}

			plnr := planner.New()
			var planned []model.PlannedOperation
			description := ""

			if into != "" {
				opType := model.OpMove
				if copyFiles {
					opType = model.OpCopy
				}
				planned, err = plnr.PlanInto(files, into, opType)
				if err != nil {
					return err
				}
				description = fmt.Sprintf("%s %d files into %s", opType, len(planned), into)
			} else {
				eng, closeEngine, buildErr := buildEngine(settings)
				if buildErr != nil {
					return buildErr
				}
				defer closeEngine()

				results, classifyErr := eng.ClassifyBatch(ctx, files, categories)
				if classifyErr != nil {
					return classifyErr
				}

				planned, err = plnr.PlanClassified(files, results, categories, root)
				if err != nil {
					return err
				}
				description = fmt.Sprintf("organize %d files in %s", len(planned), root)
			}

			if len(planned) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to organize."))
				return nil
			}

			if dryRun {
				fmt.Println(cli.FormatTitle("Planned operations (dry run)"))
				for _, op := range planned {
					fmt.Printf("  %s %s -> %s\n", op.OperationType, op.Source, op.Destination)
				}
				return nil
			}

			history, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = history.Close() }()

			// Sized so the executor's non-blocking sends can never drop an event.
			progress := make(chan model.OperationProgress, len(planned)+2)
			bar := progressbar.NewOptions(len(planned),
				progressbar.OptionSetDescription("organizing"),
				progressbar.OptionSetWriter(os.Stderr),
			)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for event := range progress {
					_ = bar.Set(event.CompletedCount)
				}
			}()

			exec := executor.New(history, nil)
			batch, err := exec.Execute(ctx, planned, description, progress)
			close(progress)
			<-done
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)

			if err != nil {
				return err
			}

			completed, failed := 0, 0
			for _, op := range batch.Operations {
				switch op.Status {
				case model.StatusCompleted:
					completed++
				case model.StatusFailed:
					failed++
					fmt.Println(cli.FormatError(fmt.Sprintf("%s %s: %s", op.OperationType, op.SourcePath, op.Error)))
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d operations completed, %d failed (batch %s)", completed, failed, batch.ID)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without executing it")
	cmd.Flags().BoolVar(&copyFiles, "copy", false, "copy instead of move (with --into)")
	cmd.Flags().StringVar(&into, "into", "", "move everything into this folder instead of classifying")

	return cmd
}
