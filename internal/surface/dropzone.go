package surface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/filedrop/filedrop/internal/constants"
	"github.com/filedrop/filedrop/internal/localfs"
	"github.com/filedrop/filedrop/internal/models"
	"github.com/filedrop/filedrop/internal/session"
)

// DropZone turns a directory into a drop target: files created there are
// collected until the directory has been quiet for the quiet period, then
// dropped on the Surface as one batch in arrival order.
//
// Each path is uploaded at most once per Run. When a batch is still running
// the collected files are kept and offered again after the next quiet period.
type DropZone struct {
	dir     string
	surface *Surface
	quiet   time.Duration
}

// NewDropZone creates a drop zone over dir. A zero quiet period uses
// constants.DropZoneQuietPeriod.
func NewDropZone(dir string, s *Surface, quiet time.Duration) (*DropZone, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat drop directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", dir)
	}
	if quiet <= 0 {
		quiet = constants.DropZoneQuietPeriod
	}
	return &DropZone{dir: dir, surface: s, quiet: quiet}, nil
}

// Run watches the directory until ctx is done.
func (d *DropZone) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(d.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.dir, err)
	}
	d.surface.logger.Info().Str("dir", d.dir).Msg("watching drop zone")

	var (
		pending []string
		seen    = make(map[string]bool)
		timer   = time.NewTimer(d.quiet)
		fire    <-chan time.Time
	)
	timer.Stop()
	defer timer.Stop()

	arm := func() {
		timer.Reset(d.quiet)
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			d.surface.DragLeave()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if localfs.Ignored(ev.Name) {
				continue
			}
			if !seen[ev.Name] {
				seen[ev.Name] = true
				pending = append(pending, ev.Name)
			}
			d.surface.DragOver()
			arm()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.surface.logger.Warn().Err(err).Str("dir", d.dir).Msg("drop zone watch error")

		case <-fire:
			fire = nil
			if len(pending) == 0 {
				d.surface.DragLeave()
				continue
			}

			files := d.collect(pending)
			_, err := d.surface.Drop(ctx, files)
			if errors.Is(err, session.ErrBatchInProgress) {
				d.surface.DragOver()
				arm()
				continue
			}
			if err != nil {
				d.surface.logger.Error().Err(err).Msg("drop failed")
			}
			pending = nil
		}
	}
}

// collect stats pending paths, skipping ones that vanished or are directories.
func (d *DropZone) collect(paths []string) []models.SelectedFile {
	files := make([]models.SelectedFile, 0, len(paths))
	for _, p := range paths {
		f, err := models.LocalFile(p)
		if err != nil {
			d.surface.logger.Debug().Err(err).Str("path", p).Msg("skipping drop zone entry")
			continue
		}
		files = append(files, f)
	}
	return files
}
