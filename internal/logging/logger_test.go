package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWriterLoggerWritesConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Info().Str("file", "a.txt").Msg("uploaded")

	out := buf.String()
	if !strings.Contains(out, "uploaded") || !strings.Contains(out, "file=a.txt") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestSetOutputRedirects(t *testing.T) {
	var first, second bytes.Buffer
	l := NewWriterLogger(&first)
	l.SetOutput(&second)

	l.Warnf("moved %d", 1)

	if first.Len() != 0 {
		t.Errorf("old writer should stay empty, got %q", first.String())
	}
	if !strings.Contains(second.String(), "moved 1") {
		t.Errorf("new writer missing line: %q", second.String())
	}
	if l.Output() != &second {
		t.Error("Output() should return the current writer")
	}
}

func TestServerModeWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("server", &buf)

	l.Info().Int("status", 200).Msg("request")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("server mode should emit JSON, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != zerolog.DebugLevel {
		t.Errorf("ParseLevel(debug) = %v", got)
	}
	if got := ParseLevel("nonsense"); got != zerolog.InfoLevel {
		t.Errorf("ParseLevel(nonsense) = %v, want info", got)
	}
	if got := ParseLevel(""); got != zerolog.InfoLevel {
		t.Errorf("ParseLevel(\"\") = %v, want info", got)
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Error().Msg("dropped")
	l.Infof("dropped %s", "too")
}
