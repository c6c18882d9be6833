package cli

import (
	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/registry"
	"github.com/filedrop/filedrop/internal/util/filter"
)

func newListCmd() *cobra.Command {
	var (
		include  string
		exclude  string
		search   string
		showURLs bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List files stored on the server",
		Long: `List the files stored on the server with their sizes.

Examples:
  filedrop list
  filedrop list --include "*.pdf,*.txt"
  filedrop list --exclude "*.tmp" --search report
  filedrop list --urls`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			view := registry.NewView(client, registry.Options{
				Renderer: &registryPrinter{
					out: cmd.OutOrStdout(),
					filter: filter.Config{
						Include: filter.ParsePatternList(include),
						Exclude: filter.ParsePatternList(exclude),
						Search:  filter.ParsePatternList(search),
					},
					showURLs: showURLs,
				},
				Logger: GetLogger(),
			})
			return view.Refresh(GetContext())
		},
	}

	cmd.Flags().StringVar(&include, "include", "", "Only show files matching these patterns (comma-separated)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Hide files matching these patterns (comma-separated)")
	cmd.Flags().StringVar(&search, "search", "", "Only show files whose name contains all of these terms (comma-separated)")
	cmd.Flags().BoolVar(&showURLs, "urls", false, "Show download URLs")

	return cmd
}
