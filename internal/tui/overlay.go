package tui

import (
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Toast represents a brief notification displayed above the footer.
type Toast struct {
	ID      int
	Message string
	IsError bool
}

// toastDismissDelay is how long a toast stays visible.
const toastDismissDelay = 5 * time.Second

// maxToasts caps the toast stack; older toasts are dropped first.
const maxToasts = 3

// nextToastID is an atomic counter for toast IDs, safe for concurrent use in tests.
var nextToastID atomic.Int32

// NewToast creates a new toast notification and returns it along with
// a tea.Cmd that will fire MsgToastExpired after the dismiss delay.
func NewToast(message string, isError bool) (Toast, tea.Cmd) {
	id := int(nextToastID.Add(1))
	t := Toast{
		ID:      id,
		Message: message,
		IsError: isError,
	}
	cmd := tea.Tick(toastDismissDelay, func(_ time.Time) tea.Msg {
		return MsgToastExpired{ID: id}
	})
	return t, cmd
}

// RenderToasts renders the toast stack, one line per toast.
func RenderToasts(toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		msg := t.Message
		if maxWidth := width - 2; maxWidth > 0 {
			msg = ansi.Truncate(msg, maxWidth, "…")
		}
		style := styleToast
		if t.IsError {
			style = styleToastError
		}
		lines = append(lines, style.Width(width).Render(msg))
	}
	return strings.Join(lines, "\n")
}

// pushToast appends t, dropping the oldest toasts beyond maxToasts.
func pushToast(toasts []Toast, t Toast) []Toast {
	toasts = append(toasts, t)
	if len(toasts) > maxToasts {
		toasts = toasts[len(toasts)-maxToasts:]
	}
	return toasts
}

// removeToast filters out the toast with the given ID.
func removeToast(toasts []Toast, id int) []Toast {
	result := make([]Toast, 0, len(toasts))
	for _, t := range toasts {
		if t.ID != id {
			result = append(result, t)
		}
	}
	return result
}
