package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/mdc/internal/controller"
	"github.com/Zuo-Peng/mdc/internal/staging"
)

func uploadCmd(serverURL *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files or folders for indexing and start a new session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := staging.FromPaths(args...)
			if err != nil {
				return err
			}

			var area staging.Area
			area.Add(files...)
			snap := area.Snapshot()
			for _, f := range snap.Files {
				fmt.Fprintf(os.Stderr, "  %s %s\n", f.Name, dimColor.Sprintf("(%s, %s)", mimeOrUnknown(f.MimeType), staging.FormatBytes(f.SizeBytes)))
			}
			fmt.Fprintf(os.Stderr, "%d file(s), %s\n", snap.Count, staging.FormatBytes(snap.TotalBytes))
			if dryRun {
				return nil
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, *serverURL)
			if err != nil {
				return err
			}
			defer a.Close()

			a.sess.ReplaceStaging(snap.Files)

			var res controller.IndexResult
			err = spinWhile(" Indexing...", func() error {
				var err error
				res, err = a.indexer.SubmitCorpus(ctx)
				return err
			})
			if err != nil {
				if errors.Is(err, controller.ErrEmptySelection) {
					return errors.New(controller.NoticeEmptySelection)
				}
				errColor.Fprintln(os.Stderr, controller.NoticeIndexingFailed)
				return err
			}

			okColor.Fprintf(os.Stderr, "%s: %d document(s)\n", controller.NoticeIndexingComplete, len(res.Documents))
			fmt.Println(res.SessionID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the files that would be uploaded and exit")

	return cmd
}

func mimeOrUnknown(m string) string {
	if m == "" {
		return "unknown type"
	}
	return m
}
