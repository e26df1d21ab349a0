package taskwarrior

import (
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdxmph/gatherer/internal/tasks"
)

// taskwarrior writes dates in its own compact ISO form
const dateLayout = "20060102T150405Z"

// taskWarriorTask represents a TaskWarrior task in its native export format
type taskWarriorTask struct {
	ID          int      `json:"id"`
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
	Entry       string   `json:"entry"`
	Due         string   `json:"due,omitempty"`
	// Size is the optional numeric "size" UDA
	Size *float64 `json:"size,omitempty"`
}

// Runner executes a command and returns its stdout
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Backend implements tasks.Backend for TaskWarrior
type Backend struct {
	enabled bool
	run     Runner
}

// NewBackend creates a TaskWarrior backend using the task binary on PATH
func NewBackend() tasks.Backend {
	return &Backend{
		enabled: isTaskWarriorAvailable(),
		run:     execRunner,
	}
}

// NewBackendWithRunner creates an enabled backend that shells out through run
func NewBackendWithRunner(run Runner) *Backend {
	return &Backend{enabled: true, run: run}
}

// Name returns the backend identifier
func (b *Backend) Name() string {
	return "taskwarrior"
}

// IsEnabled returns whether TaskWarrior integration is available
func (b *Backend) IsEnabled() bool {
	return b.enabled
}

// PendingTasks exports pending tasks carrying tag
func (b *Backend) PendingTasks(tag string) ([]tasks.Task, error) {
	if !b.enabled {
		return nil, fmt.Errorf("TaskWarrior not available")
	}
	if tag == "" {
		return []tasks.Task{}, nil
	}

	// Filter goes before the export command
	args := []string{"rc.verbose=nothing", "tag:" + tag, "status:pending", "export"}
	output, err := b.run("task", args...)
	if err != nil {
		if strings.Contains(string(output), "No matching tasks") {
			return []tasks.Task{}, nil
		}
		return nil, fmt.Errorf("running 'task %s': %w", strings.Join(args, " "), err)
	}

	return parseExport(output)
}

// parseExport decodes `task export` output
func parseExport(output []byte) ([]tasks.Task, error) {
	var twTasks []taskWarriorTask
	if len(strings.TrimSpace(string(output))) > 0 {
		if err := json.Unmarshal(output, &twTasks); err != nil {
			return nil, fmt.Errorf("parsing task JSON: %w", err)
		}
	}

	result := make([]tasks.Task, 0, len(twTasks))
	for _, tw := range twTasks {
		t, err := convertTask(tw)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// convertTask converts a TaskWarrior task to the generic Task type
func convertTask(tw taskWarriorTask) (tasks.Task, error) {
	id, err := uuid.Parse(tw.UUID)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("task %d has a malformed uuid %q: %w", tw.ID, tw.UUID, err)
	}

	task := tasks.Task{
		ID:          id.String(),
		Description: tw.Description,
		Tags:        tw.Tags,
		Size:        wholeSize(tw.Size),
	}
	if t, ok := parseDate(tw.Entry); ok {
		task.Created = t
	}
	if t, ok := parseDate(tw.Due); ok {
		task.Due = &t
	}
	return task, nil
}

// wholeSize keeps only positive whole-number sizes
func wholeSize(size *float64) int {
	if size == nil {
		return 0
	}
	s := *size
	if s <= 0 || s != math.Trunc(s) || s > math.MaxInt32 {
		return 0
	}
	return int(s)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isTaskWarriorAvailable checks if TaskWarrior is installed and configured
func isTaskWarriorAvailable() bool {
	return exec.Command("task", "version").Run() == nil
}

func init() {
	tasks.Register("taskwarrior", func() tasks.Backend { return NewBackend() })
}
