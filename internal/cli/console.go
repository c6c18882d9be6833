package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/filedrop/filedrop/internal/registry"
	"github.com/filedrop/filedrop/internal/util/filter"
)

// registryPrinter renders the registry as a table. Filters apply to the
// rendered entries only; the view keeps the full list.
type registryPrinter struct {
	out      io.Writer
	filter   filter.Config
	showURLs bool
}

func (p *registryPrinter) RenderRegistry(s registry.Snapshot) {
	switch s.State {
	case registry.StateLoading:
		return
	case registry.StateEmpty, registry.StateError:
		fmt.Fprintln(p.out, s.Placeholder)
		return
	}

	entries := s.Entries
	if !p.filter.Empty() {
		kept := make([]registry.Entry, 0, len(entries))
		for _, e := range entries {
			if filter.Match(e.Name, p.filter) {
				kept = append(kept, e)
			}
		}
		fmt.Fprintf(p.out, "Filtered: %d of %d files match filters\n", len(kept), len(entries))
		entries = kept
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No files found")
		return
	}

	width := len("NAME")
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	fmt.Fprintf(p.out, "%-*s  %12s", width, "NAME", "SIZE")
	if p.showURLs {
		fmt.Fprint(p.out, "  URL")
	}
	fmt.Fprintln(p.out)
	for _, e := range entries {
		fmt.Fprintf(p.out, "%-*s  %12s", width, e.Name, e.SizeText)
		if p.showURLs {
			fmt.Fprintf(p.out, "  %s", e.DownloadURL)
		}
		fmt.Fprintln(p.out)
	}
}

// promptConfirmer asks a y/N question on the terminal.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// autoConfirmer answers yes without asking (--yes).
type autoConfirmer struct{}

func (autoConfirmer) Confirm(context.Context, string) (bool, error) { return true, nil }

// consoleNotifier prints notices on their own line.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Notify(msg string) {
	fmt.Fprintln(n.out, msg)
}

// dropIndicator prints drop zone activity for `watch`.
type dropIndicator struct {
	mu  sync.Mutex
	out io.Writer
}

func (d *dropIndicator) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if active {
		fmt.Fprintln(d.out, "Files arriving...")
	} else {
		fmt.Fprintln(d.out, "Waiting for files")
	}
}
