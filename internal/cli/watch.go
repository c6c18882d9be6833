package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/constants"
	"github.com/filedrop/filedrop/internal/notify"
	"github.com/filedrop/filedrop/internal/pathutil"
	"github.com/filedrop/filedrop/internal/surface"
)

func newWatchCmd() *cobra.Command {
	var (
		quiet         time.Duration
		notifyDesktop bool
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Upload files as they are dropped into a directory",
		Long: `Watch a directory and upload files copied or saved into it.

Files that arrive together are uploaded as one batch once the directory has
been quiet for the quiet period. Files that arrive while a batch is running
are uploaded in the next batch. Press Ctrl+C to stop.

Examples:
  filedrop watch ~/Outbox
  filedrop watch ./drop --quiet-period 2s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			sess, err := newUploadSession(client, cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer sess.Close()

			if notifyDesktop {
				wait := notify.NewDesktop(log).Watch(sess.bus)
				defer func() {
					sess.Close()
					wait()
				}()
			}

			s := surface.New(sess.controller, surface.Options{
				Indicator: &dropIndicator{out: sess.ui.Writer()},
				EventBus:  sess.bus,
				Logger:    log,
			})

			dir, err := pathutil.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("invalid directory: %w", err)
			}
			dz, err := surface.NewDropZone(dir, s, quiet)
			if err != nil {
				return err
			}
			return dz.Run(GetContext())
		},
	}

	cmd.Flags().DurationVar(&quiet, "quiet-period", constants.DropZoneQuietPeriod, "How long the directory must be quiet before a batch starts")
	cmd.Flags().BoolVar(&notifyDesktop, "notify", false, "Show a desktop notification when a batch finishes")
	return cmd
}
