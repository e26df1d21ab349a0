package project

import "time"

// Task is a single sized unit of work inside a project
type Task struct {
	ID          int64
	ProjectID   int64
	Title       string
	Size        int
	Order       int
	CompletedAt *time.Time

	Errors Errors
}

// TotalSize returns the task's size
func (t *Task) TotalSize() int {
	return t.Size
}

// Measure returns the task's size, or 0 for a completed task when only
// incomplete work is being counted
func (t *Task) Measure(incompleteOnly bool) int {
	if incompleteOnly && t.Complete() {
		return 0
	}
	return t.Size
}

// Complete reports whether the task has a completion timestamp
func (t *Task) Complete() bool {
	return t.CompletedAt != nil
}

// MarkCompleted stamps the task as done at the given instant. A task that is
// already complete keeps its original timestamp.
func (t *Task) MarkCompleted(at time.Time) {
	if t.Complete() {
		return
	}
	t.CompletedAt = &at
}

// Reopen clears the completion timestamp
func (t *Task) Reopen() {
	t.CompletedAt = nil
}

// completedWithin reports whether the task was completed inside [from, to]
func (t *Task) completedWithin(from, to time.Time) bool {
	if t.CompletedAt == nil {
		return false
	}
	c := *t.CompletedAt
	return !c.Before(from) && !c.After(to)
}
