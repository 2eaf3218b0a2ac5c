package session

import (
	"fmt"
	"time"
)

const DefaultHistorySize = 20 // commands kept in the history panel

// Entry is one detected command.
type Entry struct {
	Command string
	Time    time.Time
}

// History keeps the most recent commands, newest first.  It outlives
// sessions.
type History struct {
	size    int
	entries []Entry
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Add records command at the front and drops the oldest beyond the limit.
func (h *History) Add(command string, at time.Time) {
	h.entries = append([]Entry{{Command: command, Time: at}}, h.entries...)
	if len(h.entries) > h.size {
		h.entries = h.entries[:h.size]
	}
}

// Entries returns a copy, newest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Lines formats the entries as "[15:04:05] command".
func (h *History) Lines() []string {
	lines := make([]string, len(h.entries))
	for i, e := range h.entries {
		lines[i] = fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Command)
	}
	return lines
}
