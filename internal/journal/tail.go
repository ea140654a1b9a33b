package journal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoJournal is returned when a directory holds no journal files.
var ErrNoJournal = errors.New("journal: no Journal.*.log files found")

// DefaultPollInterval is how often the tailer checks for new data when no
// filesystem notification arrives.
const DefaultPollInterval = 500 * time.Millisecond

// rotateCheckEvery is how many poll ticks pass between directory scans for a
// newer journal.
const rotateCheckEvery = 10

// IsJournalFile reports whether name looks like a game journal.
func IsJournalFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, "Journal.") && strings.HasSuffix(base, ".log")
}

// Latest returns the most recently modified journal in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "Journal.*.log"))
	if err != nil {
		return "", fmt.Errorf("journal: list %s: %w", dir, err)
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = m, info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoJournal, dir)
	}
	return newest, nil
}

// Tailer follows a journal file and hands every complete line to a handler.
// Lines are delivered on the goroutine that calls Run.
type Tailer struct {
	Path         string
	Offset       int64 // start position; negative means end of file
	PollInterval time.Duration

	// OnSwitch is called when the tailer moves to a newer journal.
	OnSwitch func(path string)

	f       *os.File
	r       *bufio.Reader
	partial []byte
}

// NewTailer returns a tailer that starts at the end of path.
func NewTailer(path string) *Tailer {
	return &Tailer{Path: path, Offset: -1, PollInterval: DefaultPollInterval}
}

// Run tails until ctx is cancelled or the file can no longer be read.
// Cancellation returns nil. The line slice is reused after handle returns.
func (t *Tailer) Run(ctx context.Context, handle func(line []byte)) error {
	if err := t.open(t.Path, t.Offset); err != nil {
		return err
	}
	// t.f changes on a journal switch.
	defer func() { t.f.Close() }()

	// fsnotify is only a wake-up hint; the poll ticker keeps working without it.
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if fw, err := fsnotify.NewWatcher(); err == nil {
		defer fw.Close()
		if fw.Add(filepath.Dir(t.Path)) == nil {
			events, watchErrs = fw.Events, fw.Errors
		}
	}

	poll := t.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	ticks := 0

	for {
		if err := t.drain(handle); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Create) && IsJournalFile(ev.Name) && ev.Name != t.Path {
				if err := t.switchTo(ev.Name, handle); err != nil {
					return err
				}
			}

		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
			// Watch errors are non-fatal; polling continues.

		case <-ticker.C:
			ticks++
			if ticks%rotateCheckEvery != 0 {
				continue
			}
			latest, err := Latest(filepath.Dir(t.Path))
			if err == nil && latest != t.Path && t.isNewer(latest) {
				if err := t.switchTo(latest, handle); err != nil {
					return err
				}
			}
		}
	}
}

func (t *Tailer) open(path string, offset int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", path, err)
	}
	whence := io.SeekStart
	if offset < 0 {
		offset, whence = 0, io.SeekEnd
	}
	if _, err := f.Seek(offset, whence); err != nil {
		f.Close()
		return fmt.Errorf("journal: seek %s: %w", path, err)
	}
	t.f = f
	t.r = bufio.NewReader(f)
	t.partial = t.partial[:0]
	t.Path = path
	return nil
}

// switchTo finishes the current file and continues at the start of path.
func (t *Tailer) switchTo(path string, handle func([]byte)) error {
	if err := t.drain(handle); err != nil {
		return err
	}
	old := t.f
	if err := t.open(path, 0); err != nil {
		return err
	}
	old.Close()
	if t.OnSwitch != nil {
		t.OnSwitch(path)
	}
	return nil
}

func (t *Tailer) isNewer(path string) bool {
	cur, err := t.f.Stat()
	if err != nil {
		return true
	}
	next, err := os.Stat(path)
	if err != nil {
		return false
	}
	return next.ModTime().After(cur.ModTime())
}

// drain delivers every complete line available. A trailing fragment without
// a newline is kept until the rest of it is written.
func (t *Tailer) drain(handle func([]byte)) error {
	for {
		chunk, err := t.r.ReadBytes('\n')
		t.partial = append(t.partial, chunk...)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("journal: read %s: %w", t.Path, err)
		}
		line := bytes.TrimRight(t.partial, "\r\n")
		if len(line) > 0 {
			handle(line)
		}
		t.partial = t.partial[:0]
	}
}
