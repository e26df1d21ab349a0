// Package project holds the project and task entities and the forecasting
// engine that decides whether a project will land by its due date.
package project

import "time"

// Project is an ordered list of sized tasks with an optional due date
type Project struct {
	ID      int64
	Name    string
	DueDate *time.Time
	Tasks   []*Task

	Errors Errors
}

// New builds an unsaved project
func New(name string) *Project {
	return &Project{Name: name}
}

// TotalSize returns the sum of every task's size
func (p *Project) TotalSize() int {
	return p.Measure(false)
}

// Measure sums task sizes, skipping completed tasks when incompleteOnly is set
func (p *Project) Measure(incompleteOnly bool) int {
	total := 0
	for _, t := range p.Tasks {
		total += t.Measure(incompleteOnly)
	}
	return total
}

// RemainingSize returns the size of all pending tasks
func (p *Project) RemainingSize() int {
	return p.Measure(true)
}

// Done reports whether no work remains. A project with no tasks is done.
func (p *Project) Done() bool {
	return p.RemainingSize() == 0
}

// NextTaskOrder returns the order a newly appended task should take
func (p *Project) NextTaskOrder() int {
	highest := 0
	for _, t := range p.Tasks {
		if t.Order > highest {
			highest = t.Order
		}
	}
	return highest + 1
}

// AddTask appends a pending task at the end of the project
func (p *Project) AddTask(title string, size int) *Task {
	t := &Task{
		ProjectID: p.ID,
		Title:     title,
		Size:      size,
		Order:     p.NextTaskOrder(),
	}
	p.Tasks = append(p.Tasks, t)
	return t
}

// Task returns the task with the given ID, or nil
func (p *Project) Task(id int64) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// CompletedCount returns how many tasks have been completed
func (p *Project) CompletedCount() int {
	n := 0
	for _, t := range p.Tasks {
		if t.Complete() {
			n++
		}
	}
	return n
}
