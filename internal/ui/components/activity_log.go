package components

import (
	"fmt"
	"strings"
	"time"
)

// ActivityLog is the append-only list of timestamped lines shown under the
// file panels.
type ActivityLog struct {
	lines []string
	now   func() time.Time
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{now: time.Now}
}

// Add appends a line prefixed with the wall-clock time.
func (l *ActivityLog) Add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.lines = append(l.lines, fmt.Sprintf("[%s] %s", l.now().Format("15:04:05"), msg))
}

func (l *ActivityLog) Lines() []string {
	return append([]string(nil), l.lines...)
}

func (l *ActivityLog) Len() int {
	return len(l.lines)
}

func (l *ActivityLog) String() string {
	return strings.Join(l.lines, "\n")
}
