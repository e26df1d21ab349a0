package workflow

import (
	"fmt"
	"strings"
	"time"
)

// DueDateLayout is the accepted due date input format
const DueDateLayout = "2006-01-02"

// ParseDueDate parses a YYYY-MM-DD day as midnight UTC. Due dates are
// calendar days, so they are stored and displayed in UTC. An empty string
// means no due date.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	due, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("due date %q must look like %s", s, DueDateLayout)
	}
	return &due, nil
}
