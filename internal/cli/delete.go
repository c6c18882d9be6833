package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/registry"
)

func newDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:     "delete <name> [name...]",
		Aliases: []string{"rm"},
		Short:   "Delete stored files",
		Long: `Delete one or more stored files by name. Each deletion is confirmed
first unless --yes is given. The file list is printed after each deletion.

Examples:
  filedrop delete old.zip
  filedrop delete a.txt b.txt --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			var confirmer registry.Confirmer = autoConfirmer{}
			if !assumeYes {
				confirmer = newPromptConfirmer(os.Stdin, os.Stderr)
			}

			view := registry.NewView(client, registry.Options{
				Renderer:  &registryPrinter{out: cmd.OutOrStdout()},
				Confirmer: confirmer,
				Notifier:  consoleNotifier{out: os.Stderr},
				Logger:    GetLogger(),
			})

			var failed int
			for _, name := range args {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if _, err := view.Delete(ctx, name); err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deletions failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}
