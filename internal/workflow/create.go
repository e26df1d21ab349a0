// Package workflow turns raw form input into a saved project.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdxmph/gatherer/internal/project"
)

// Saver persists a project and its tasks as one unit. Validation failures
// must be reported as errors wrapping project.ErrInvalid with nothing
// written.
type Saver interface {
	SaveProject(p *project.Project) error
}

// Option configures a CreateProject
type Option func(*CreateProject)

// WithDueDate sets the new project's due date
func WithDueDate(due *time.Time) Option {
	return func(w *CreateProject) {
		w.DueDate = due
	}
}

// WithLogger sets the logger used to report the outcome
func WithLogger(logger *log.Logger) Option {
	return func(w *CreateProject) {
		w.logger = logger
	}
}

// CreateProject builds a project from a name and a block of task text and
// saves it in one go
type CreateProject struct {
	Name       string
	TaskString string
	DueDate    *time.Time

	store   Saver
	logger  *log.Logger
	project *project.Project
	success bool
}

// NewCreateProject prepares a creation workflow; nothing happens until Create
func NewCreateProject(store Saver, name, taskString string, opts ...Option) *CreateProject {
	w := &CreateProject{
		Name:       name,
		TaskString: taskString,
		store:      store,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Build parses the task text into an unsaved project
func (w *CreateProject) Build() *project.Project {
	p := project.New(w.Name)
	p.DueDate = w.DueDate
	for _, spec := range ParseTasks(w.TaskString) {
		p.AddTask(spec.Title, spec.Size)
	}
	return p
}

// Create builds the project and attempts a single atomic save. Validation
// failures are reported through Success, not as an error; only storage
// failures are returned.
func (w *CreateProject) Create() error {
	w.project = w.Build()
	w.success = false

	err := w.store.SaveProject(w.project)
	switch {
	case err == nil:
		w.success = true
		w.logger.Info("Created project", "id", w.project.ID, "name", w.project.Name, "tasks", len(w.project.Tasks))
		return nil
	case errors.Is(err, project.ErrInvalid):
		w.logger.Debug("Project failed validation", "name", w.project.Name, "errors", w.project.Errors.Full())
		return nil
	default:
		return fmt.Errorf("saving project %q: %w", w.project.Name, err)
	}
}

// Success reports whether the last Create saved the project
func (w *CreateProject) Success() bool {
	return w.success
}

// Project returns the saved project, or on failure the unsaved candidate
// with its parsed tasks and validation errors intact
func (w *CreateProject) Project() *project.Project {
	return w.project
}
