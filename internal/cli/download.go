package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/filedrop/filedrop/internal/api"
	"github.com/filedrop/filedrop/internal/diskspace"
	"github.com/filedrop/filedrop/internal/pathutil"
	"github.com/filedrop/filedrop/internal/progress"
	"github.com/filedrop/filedrop/internal/registry"
	"github.com/filedrop/filedrop/internal/util/filter"
	"github.com/filedrop/filedrop/internal/validation"
)

// downloader is the part of the API client fileSaver needs.
type downloader interface {
	Download(ctx context.Context, name string, w io.Writer, progress api.ProgressFunc) (int64, error)
}

// fileSaver opens a download URL by saving the file into dir.
// The file only appears under its final name once fully written.
type fileSaver struct {
	client   downloader
	dir      string
	reporter progress.Reporter
	out      io.Writer
}

func (s *fileSaver) Open(ctx context.Context, url, name string) error {
	base, err := validation.BaseName(name)
	if err != nil {
		return err
	}
	dest := filepath.Join(s.dir, base)
	if err := validation.PathInDirectory(dest, s.dir); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	reporter := s.reporter
	if reporter == nil {
		reporter = progress.NoOpProgress{}
	}

	// The size is only known once the response arrives.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	track := progress.Track(reporter, base)
	checked := false
	n, err := s.client.Download(ctx, name, tmp, func(transferred, total int64) {
		if !checked {
			checked = true
			if err := diskspace.Check(s.dir, total); err != nil {
				cancel(err)
				return
			}
		}
		track(transferred, total)
	})
	if cause := context.Cause(ctx); diskspace.IsInsufficientSpace(cause) {
		err = cause
	}
	if err != nil {
		reporter.Error(err)
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", base, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save %s: %w", base, err)
	}
	reporter.Finish()

	if s.out != nil {
		fmt.Fprintf(s.out, "Saved %s (%d bytes)\n", dest, n)
	}
	return nil
}

// urlPrinter opens a download URL by printing it.
type urlPrinter struct {
	out io.Writer
}

func (p urlPrinter) Open(_ context.Context, url, _ string) error {
	_, err := fmt.Fprintln(p.out, url)
	return err
}

func newDownloadCmd() *cobra.Command {
	var (
		outDir   string
		printURL bool
		quiet    bool
		all      bool
		include  string
		exclude  string
		search   string
	)

	cmd := &cobra.Command{
		Use:   "download <name> [name...]",
		Short: "Download stored files",
		Long: `Download one or more stored files by name into the output directory.

With --all, every stored file matching the filters is downloaded.

Examples:
  filedrop download report.pdf
  filedrop download report.pdf notes.txt --outdir ./incoming
  filedrop download report.pdf --print-url
  filedrop download --all --include "*.pdf"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("give file names or --all, not both or neither")
			}

			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			ctx := GetContext()

			if all {
				files, err := client.ListFiles(ctx)
				if err != nil {
					return fmt.Errorf("failed to list files: %w", err)
				}
				files = filter.Apply(files, filter.Config{
					Include: filter.ParsePatternList(include),
					Exclude: filter.ParsePatternList(exclude),
					Search:  filter.ParsePatternList(search),
				})
				if len(files) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files found")
					return nil
				}
				for _, f := range files {
					args = append(args, f.Name)
				}
			}

			var opener registry.Opener
			if printURL {
				opener = urlPrinter{out: cmd.OutOrStdout()}
			} else {
				dir := outDir
				if dir == "" {
					dir = cfg.DownloadDir
				}
				dir, err := pathutil.Resolve(dir)
				if err != nil {
					return fmt.Errorf("invalid output directory: %w", err)
				}
				saver := &fileSaver{client: client, dir: dir, out: cmd.OutOrStdout()}
				if !quiet {
					saver.reporter = progress.NewCLIProgress(os.Stderr)
				}
				opener = saver
			}

			view := registry.NewView(client, registry.Options{
				Opener: opener,
				Logger: GetLogger(),
			})

			var failed int
			for _, name := range args {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := view.Download(ctx, name); err != nil {
					GetLogger().Error().Err(err).Str("file", name).Msg("download failed")
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "outdir", "o", "", "Output directory (default: download_dir from config, else current directory)")
	cmd.Flags().BoolVar(&printURL, "print-url", false, "Print download URLs instead of downloading")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	cmd.Flags().BoolVar(&all, "all", false, "Download every stored file matching the filters")
	cmd.Flags().StringVar(&include, "include", "", "With --all: only files matching these patterns (comma-separated)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "With --all: skip files matching these patterns (comma-separated)")
	cmd.Flags().StringVar(&search, "search", "", "With --all: only files whose name contains all of these terms (comma-separated)")

	return cmd
}
