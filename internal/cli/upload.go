package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/surface"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload files to the server, one after another",
		Long: `Upload one or more files as a single batch.

Files are sent strictly one at a time in the order given. Each file shows
its own status; a failed file does not stop the rest of the batch. When all
files are done the file list is refreshed and printed.

Without arguments, paths are read from standard input, one per line.

Examples:
  filedrop upload report.pdf notes.txt
  filedrop upload "*.zip"
  ls *.log | filedrop upload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()
			ctx := GetContext()

			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			sess, err := newUploadSession(client, cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Close()

			s := surface.New(sess.controller, surface.Options{
				Chooser:  stdinChooser{in: os.Stdin, out: os.Stderr},
				EventBus: sess.bus,
				Logger:   log,
			})

			if len(args) > 0 {
				files, err := collectFiles(args)
				if err != nil {
					return err
				}
				batch, err := s.OnFilesSelected(ctx, files)
				if err != nil {
					return err
				}
				return batchError(batch.Wait())
			}

			batch, err := s.Choose(ctx)
			if err != nil {
				return err
			}
			if batch == nil {
				fmt.Fprintln(os.Stderr, "No files selected")
				return nil
			}
			return batchError(batch.Wait())
		},
	}
	return cmd
}
