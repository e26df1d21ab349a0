package tasks

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdxmph/gatherer/internal/workflow"
)

// ErrNoBackend is returned when an import is attempted without an
// available task manager
var ErrNoBackend = errors.New("no task backend available")

// backendPreference is the auto-detection order
var backendPreference = []string{"taskwarrior", "dstask"}

// Manager selects a backend and turns its tasks into project task text
type Manager struct {
	backend Backend
}

// NewManager creates a manager for backendName. An empty name picks the
// first enabled backend, falling back to noop.
func NewManager(backendName string) (*Manager, error) {
	if backendName != "" {
		backend, err := CreateBackend(backendName)
		if err != nil {
			return nil, fmt.Errorf("creating backend %s: %w", backendName, err)
		}
		return &Manager{backend: backend}, nil
	}

	for _, name := range backendPreference {
		b, err := CreateBackend(name)
		if err != nil {
			continue
		}
		if b.IsEnabled() {
			return &Manager{backend: b}, nil
		}
	}
	return &Manager{backend: NewNoopBackend()}, nil
}

// NewManagerWithBackend wraps an existing backend
func NewManagerWithBackend(b Backend) *Manager {
	return &Manager{backend: b}
}

// Backend returns the current backend
func (m *Manager) Backend() Backend {
	return m.backend
}

// Name returns the name of the current backend
func (m *Manager) Name() string {
	return m.backend.Name()
}

// IsEnabled returns whether the current backend is enabled
func (m *Manager) IsEnabled() bool {
	return m.backend.IsEnabled()
}

// ImportLines fetches the pending tasks tagged tag and renders them as
// task text, one "title:size" line per task, oldest first.
func (m *Manager) ImportLines(tag string) (string, error) {
	if !m.backend.IsEnabled() {
		return "", fmt.Errorf("importing tag %q: %w", tag, ErrNoBackend)
	}
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "+")
	if tag == "" {
		return "", errors.New("import tag is empty")
	}

	pending, err := m.backend.PendingTasks(tag)
	if err != nil {
		return "", fmt.Errorf("listing %s tasks: %w", m.backend.Name(), err)
	}

	return FormatLines(pending), nil
}

// FormatLines renders tasks as task text, oldest first. Each description is
// collapsed onto one line.
func FormatLines(pending []Task) string {
	sorted := make([]Task, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created.Before(sorted[j].Created)
	})

	lines := make([]string, 0, len(sorted))
	for _, t := range sorted {
		title := strings.Join(strings.Fields(t.Description), " ")
		if title == "" {
			continue
		}
		size := t.Size
		if size <= 0 {
			size = workflow.DefaultTaskSize
		}
		lines = append(lines, workflow.FormatTaskLine(title, size))
	}
	return strings.Join(lines, "\n")
}
