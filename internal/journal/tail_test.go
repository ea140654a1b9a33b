package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append %s: %v", path, err)
	}
}

func TestIsJournalFile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		want bool
	}{
		{"Journal.2026-01-10T200000.01.log", true},
		{"/saves/Journal.2026-01-10T200000.01.log", true},
		{"Status.json", false},
		{"Journal.log.bak", false},
		{"JournalAlpha.log", false},
	}
	for _, tt := range tests {
		if got := IsJournalFile(tt.name); got != tt.want {
			t.Errorf("IsJournalFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	older := filepath.Join(dir, "Journal.2026-01-09T100000.01.log")
	newer := filepath.Join(dir, "Journal.2026-01-10T100000.01.log")
	writeFile(t, older, "{}\n")
	writeFile(t, newer, "{}\n")
	writeFile(t, filepath.Join(dir, "Status.json"), "{}")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := Latest(dir)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != newer {
		t.Errorf("Latest = %q, want %q", got, newer)
	}
}

func TestLatest_Empty(t *testing.T) {
	t.Parallel()
	_, err := Latest(t.TempDir())
	if !errors.Is(err, ErrNoJournal) {
		t.Errorf("err = %v, want ErrNoJournal", err)
	}
}

// lineCollector gathers lines delivered by a Tailer.
type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) handle(line []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(line))
}

func (c *lineCollector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *lineCollector) waitFor(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := c.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d lines, got %v", n, c.snapshot())
	return nil
}

func startTailer(t *testing.T, tl *Tailer, c *lineCollector) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tl.Run(ctx, c.handle) }()
	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("tailer did not stop")
			return nil
		}
	}
}

func TestTailer_StartsAtEnd(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "Journal.2026-01-10T200000.01.log")
	writeFile(t, path, "{\"event\":\"old\"}\n")

	tl := NewTailer(path)
	tl.PollInterval = 10 * time.Millisecond
	c := &lineCollector{}
	stop := startTailer(t, tl, c)

	time.Sleep(50 * time.Millisecond)
	appendFile(t, path, "{\"event\":\"new\"}\n")

	got := c.waitFor(t, 1)
	if err := stop(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got[0] != `{"event":"new"}` {
		t.Errorf("first line = %q, want the appended line", got[0])
	}
}

func TestTailer_FromOffset(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "Journal.2026-01-10T200000.01.log")
	first := "{\"event\":\"a\"}\n"
	writeFile(t, path, first+"{\"event\":\"b\"}\r\n")

	tl := NewTailer(path)
	tl.Offset = int64(len(first))
	tl.PollInterval = 10 * time.Millisecond
	c := &lineCollector{}
	stop := startTailer(t, tl, c)

	got := c.waitFor(t, 1)
	stop()
	if got[0] != `{"event":"b"}` {
		t.Errorf("line = %q, want b without CR", got[0])
	}
}

func TestTailer_BuffersPartialLine(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "Journal.2026-01-10T200000.01.log")
	writeFile(t, path, "")

	tl := NewTailer(path)
	tl.PollInterval = 10 * time.Millisecond
	c := &lineCollector{}
	stop := startTailer(t, tl, c)

	appendFile(t, path, `{"event":"Sc`)
	time.Sleep(100 * time.Millisecond)
	if got := c.snapshot(); len(got) != 0 {
		t.Fatalf("partial line delivered early: %v", got)
	}
	appendFile(t, path, "an\"}\n")

	got := c.waitFor(t, 1)
	stop()
	if got[0] != `{"event":"Scan"}` {
		t.Errorf("line = %q, want the joined line", got[0])
	}
}

func TestTailer_SwitchesToNewJournal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := filepath.Join(dir, "Journal.2026-01-10T200000.01.log")
	writeFile(t, first, "")

	var (
		mu       sync.Mutex
		switched string
	)
	tl := NewTailer(first)
	tl.PollInterval = 10 * time.Millisecond
	tl.OnSwitch = func(p string) {
		mu.Lock()
		switched = p
		mu.Unlock()
	}
	c := &lineCollector{}
	stop := startTailer(t, tl, c)

	time.Sleep(50 * time.Millisecond)
	second := filepath.Join(dir, "Journal.2026-01-10T210000.01.log")
	writeFile(t, second, "{\"event\":\"Fileheader\"}\n")

	got := c.waitFor(t, 1)
	stop()
	if got[0] != `{"event":"Fileheader"}` {
		t.Errorf("line = %q, want first line of new journal", got[0])
	}
	mu.Lock()
	defer mu.Unlock()
	if switched != second {
		t.Errorf("OnSwitch path = %q, want %q", switched, second)
	}
}

func TestTailer_ClosesCurrentJournalAfterSwitch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := filepath.Join(dir, "Journal.2026-01-10T200000.01.log")
	writeFile(t, first, "")

	tl := NewTailer(first)
	tl.PollInterval = 10 * time.Millisecond
	c := &lineCollector{}
	stop := startTailer(t, tl, c)

	time.Sleep(50 * time.Millisecond)
	second := filepath.Join(dir, "Journal.2026-01-10T210000.01.log")
	writeFile(t, second, "{\"event\":\"Fileheader\"}\n")
	c.waitFor(t, 1)
	if err := stop(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if tl.Path != second {
		t.Fatalf("Path = %q, want %q", tl.Path, second)
	}
	if err := tl.f.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("second Close = %v, want %v", err, os.ErrClosed)
	}
}

func TestTailer_MissingFile(t *testing.T) {
	t.Parallel()
	tl := NewTailer(filepath.Join(t.TempDir(), "Journal.missing.log"))
	if err := tl.Run(context.Background(), func([]byte) {}); err == nil {
		t.Fatal("expected error for missing journal")
	}
}
