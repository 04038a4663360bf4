package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fileorg/fileorg/internal/cli"
	"github.com/fileorg/fileorg/internal/model"
	"github.com/fileorg/fileorg/internal/scan"
)

func scanCmd() *cobra.Command {
	var (
		recursive     bool
		includeHidden bool
		excludes      []string
	)

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory and list its files",
		Long:  `Walk a directory tree and print a descriptor for every regular file found.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scanner := scan.New(nil)
			progress := make(chan model.ScanProgress, 64)

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionSetWriter(os.Stderr),
			)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for event := range progress {
					_ = bar.Set(event.ScannedCount)
				}
			}()

			files, err := scanner.Scan(ctx, scan.Options{
				Path:            args[0],
				Recursive:       recursive,
				IncludeHidden:   includeHidden,
				ExcludePatterns: excludes,
			}, progress)
			close(progress)
			<-done
			_ = bar.Finish()
			fmt.Fprintln(os.Stderr)

			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "NAME\tTYPE\tSIZE\tPATH\n")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.Name, f.FileType, f.Size, f.Path)
			}

			fmt.Fprintln(os.Stderr, cli.FormatSuccess(fmt.Sprintf("scanned %d files", len(files))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files")
	cmd.Flags().StringSliceVar(&excludes, "exclude", nil, "glob patterns to skip (repeatable)")

	return cmd
}
