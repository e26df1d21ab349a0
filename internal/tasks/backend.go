package tasks

import "time"

// Task is a pending item pulled from an external task manager
type Task struct {
	ID          string // Backend-specific ID (UUID for taskwarrior, number for dstask)
	Description string
	Tags        []string
	Created     time.Time
	Due         *time.Time
	Size        int // 0 when the backend has no size for the task
}

// Backend is a source of pending tasks that can seed a new project
type Backend interface {
	// Name returns the backend identifier (e.g., "taskwarrior", "dstask")
	Name() string

	// IsEnabled checks if the backend is available and properly configured
	IsEnabled() bool

	// PendingTasks returns the open tasks carrying tag
	PendingTasks(tag string) ([]Task, error)
}

// BackendFactory is a function that creates a new instance of a Backend
type BackendFactory func() Backend
