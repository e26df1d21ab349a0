package dstask

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pdxmph/gatherer/internal/tasks"
)

// sizeTagPrefix marks a dstask tag that carries a task size, e.g. "size-3"
const sizeTagPrefix = "size-"

// dstaskTask represents a dstask task in its native JSON format
type dstaskTask struct {
	ID      int      `json:"id"`
	UUID    string   `json:"uuid"`
	Summary string   `json:"summary"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
	Created string   `json:"created"`
	Due     string   `json:"due,omitempty"`
}

// Runner executes a command and returns its stdout
type Runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Backend implements tasks.Backend for dstask
type Backend struct {
	enabled bool
	run     Runner
}

// NewBackend creates a dstask backend using the dstask binary on PATH
func NewBackend() tasks.Backend {
	return &Backend{
		enabled: isDstaskAvailable(),
		run:     execRunner,
	}
}

// NewBackendWithRunner creates an enabled backend that shells out through run
func NewBackendWithRunner(run Runner) *Backend {
	return &Backend{enabled: true, run: run}
}

// Name returns the backend identifier
func (b *Backend) Name() string {
	return "dstask"
}

// IsEnabled returns whether dstask integration is available
func (b *Backend) IsEnabled() bool {
	return b.enabled
}

// PendingTasks returns open tasks carrying tag
func (b *Backend) PendingTasks(tag string) ([]tasks.Task, error) {
	if !b.enabled {
		return nil, fmt.Errorf("dstask not available")
	}
	if tag == "" {
		return []tasks.Task{}, nil
	}

	// show-open bypasses context filtering; the tag filter is applied here
	output, err := b.run("dstask", "show-open", "--json")
	if err != nil {
		return nil, fmt.Errorf("getting tasks: %w", err)
	}

	var allTasks []dstaskTask
	if len(strings.TrimSpace(string(output))) > 0 {
		if err := json.Unmarshal(output, &allTasks); err != nil {
			return nil, fmt.Errorf("parsing task JSON: %w", err)
		}
	}

	var result []tasks.Task
	for _, dt := range allTasks {
		if isOpen(dt.Status) && hasTag(dt.Tags, tag) {
			result = append(result, convertTask(dt))
		}
	}
	return result, nil
}

func isOpen(status string) bool {
	switch status {
	case "", "pending", "active", "paused":
		return true
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// convertTask converts a dstask task to the generic Task type
func convertTask(dt dstaskTask) tasks.Task {
	task := tasks.Task{
		ID:          strconv.Itoa(dt.ID),
		Description: dt.Summary,
		Tags:        dt.Tags,
		Size:        sizeFromTags(dt.Tags),
	}
	if t, err := time.Parse(time.RFC3339, dt.Created); err == nil {
		task.Created = t
	}
	if dt.Due != "" {
		if t, err := time.Parse(time.RFC3339, dt.Due); err == nil {
			task.Due = &t
		}
	}
	return task
}

// sizeFromTags reads the first positive "size-N" tag
func sizeFromTags(tags []string) int {
	for _, t := range tags {
		if !strings.HasPrefix(t, sizeTagPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(t, sizeTagPrefix))
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// isDstaskAvailable checks if dstask is installed and configured
func isDstaskAvailable() bool {
	return exec.Command("dstask", "help").Run() == nil
}

func init() {
	tasks.Register("dstask", func() tasks.Backend { return NewBackend() })
}
