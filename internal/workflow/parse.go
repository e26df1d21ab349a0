package workflow

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultTaskSize is used when a task line carries no size
const DefaultTaskSize = 1

// fractionPattern matches a plain decimal with a fractional part, such as 2.5
var fractionPattern = regexp.MustCompile(`^[+-]?\d*\.\d+$`)

// TaskSpec is one parsed line of task text
type TaskSpec struct {
	Title string
	Size  int
}

// ParseTasks splits free text into task specs, one per non-blank line.
//
// Each line is "title[:size]". The line is split at its last colon; a whole
// number after it is the size, an empty suffix means the default size, a
// plain decimal yields size 0 so validation rejects it, and anything else
// is part of the title.
func ParseTasks(text string) []TaskSpec {
	var specs []TaskSpec
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		specs = append(specs, ParseTaskLine(line))
	}
	return specs
}

// ParseTaskLine parses a single "title[:size]" line
func ParseTaskLine(line string) TaskSpec {
	line = strings.TrimSpace(line)

	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return TaskSpec{Title: line, Size: DefaultTaskSize}
	}

	title := strings.TrimSpace(line[:idx])
	suffix := strings.TrimSpace(line[idx+1:])

	if suffix == "" {
		return TaskSpec{Title: title, Size: DefaultTaskSize}
	}
	if n, err := strconv.Atoi(suffix); err == nil {
		return TaskSpec{Title: title, Size: n}
	}
	if fractionPattern.MatchString(suffix) {
		// Numeric but not whole; keep the title and let validation fail
		return TaskSpec{Title: title, Size: 0}
	}

	return TaskSpec{Title: line, Size: DefaultTaskSize}
}

// FormatTaskLine is the inverse of ParseTaskLine. The size is always
// written, so a title that itself ends in ":<number>" reads back intact.
func FormatTaskLine(title string, size int) string {
	return title + ":" + strconv.Itoa(size)
}
