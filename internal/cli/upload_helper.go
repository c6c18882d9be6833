package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/filedrop/filedrop/internal/api"
	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/events"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/progress"
	"github.com/filedrop/filedrop/internal/registry"
	"github.com/filedrop/filedrop/internal/session"
)

// expandGlobPatterns expands glob patterns like *.zip, even when quoted.
// Returns a deduplicated list of absolute paths in argument order.
func expandGlobPatterns(patterns []string) ([]string, error) {
	var expandedFiles []string
	seenFiles := make(map[string]bool)

	add := func(p string) error {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", p, err)
		}
		if !seenFiles[absPath] {
			expandedFiles = append(expandedFiles, absPath)
			seenFiles[absPath] = true
		}
		return nil
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[]") {
			if err := add(pattern); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", pattern)
		}
		for _, match := range matches {
			if err := add(match); err != nil {
				return nil, err
			}
		}
	}

	return expandedFiles, nil
}

// collectFiles expands patterns and stats every path. Directories and
// missing files fail the whole selection before anything is sent.
func collectFiles(patterns []string) ([]models.SelectedFile, error) {
	paths, err := expandGlobPatterns(patterns)
	if err != nil {
		return nil, err
	}
	files := make([]models.SelectedFile, 0, len(paths))
	for _, p := range paths {
		f, err := models.LocalFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// stdinChooser reads paths, one per line, until an empty line or EOF.
// It stands in for a native file dialog.
type stdinChooser struct {
	in  io.Reader
	out io.Writer
}

func (c stdinChooser) Choose(ctx context.Context) ([]models.SelectedFile, error) {
	fmt.Fprintln(c.out, "Enter file paths or patterns, one per line. Finish with an empty line:")

	var patterns []string
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return collectFiles(patterns)
}

// uploadSession is everything an uploading command needs, wired together.
type uploadSession struct {
	client     *api.Client
	controller *session.Controller
	view       *registry.View
	ui         progress.BatchUI
	bus        *events.EventBus
	stopEvents func()
}

func (s *uploadSession) Close() {
	s.stopEvents()
}

// newUploadSession builds the controller, the registry view it refreshes,
// and the terminal UI, all sharing one event bus. The refreshed file list
// is printed to out.
func newUploadSession(client *api.Client, cfg *config.Config, out io.Writer) (*uploadSession, error) {
	log := GetLogger()
	bus := events.NewEventBus(0)
	ui := progress.NewBatchUI(os.Stderr)

	// Log lines go above the bars while a batch is on screen.
	log.SetOutput(writerFunc(func(p []byte) (int, error) { return ui.Writer().Write(p) }))

	view := registry.NewView(client, registry.Options{
		Renderer: &registryPrinter{out: out},
		EventBus: bus,
		Logger:   log,
	})

	delay := cfg.SettleDelay
	if delay == 0 {
		delay = -1
	}
	ctrl, err := session.NewController(session.Options{
		Uploader:    client,
		Refresher:   view,
		Renderer:    ui,
		Observer:    ui,
		EventBus:    bus,
		Logger:      log,
		SettleDelay: delay,
	})
	if err != nil {
		bus.Close()
		return nil, err
	}

	return &uploadSession{
		client:     client,
		controller: ctrl,
		view:       view,
		ui:         ui,
		bus:        bus,
		stopEvents: logEvents(bus, log),
	}, nil
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// batchError summarizes failed items as the command's error.
func batchError(s session.BatchState) error {
	if failed := s.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(s.Items))
	}
	return nil
}
