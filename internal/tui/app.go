package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pdxmph/gatherer/internal/project"
	"github.com/pdxmph/gatherer/internal/workflow"
)

// Store is the persistence the UI drives
type Store interface {
	workflow.Saver
	ListProjects() ([]*project.Project, error)
	AddTask(projectID int64, title string, size int) (*project.Task, error)
	CompleteTask(taskID int64, at time.Time) error
	ReopenTask(taskID int64) error
	SetDueDate(projectID int64, due *time.Time) error
	DeleteProject(projectID int64) error
}

// Options tunes the forecast shown in the UI
type Options struct {
	WindowDays int
	Now        func() time.Time
	Logger     *log.Logger
}

// New project form field indices
const (
	FormFieldName = iota
	FormFieldDue
	FormFieldTasks
	FormFieldCount
)

// Model represents the main application state
type Model struct {
	store    Store
	projects []*project.Project
	selected int
	width    int
	height   int
	window   int
	now      func() time.Time
	logger   *log.Logger
	err      error
	status   string

	// Name filter
	filterMode bool
	filter     textinput.Model

	// Show only projects projected to miss their due date
	offScheduleFilter bool

	// Task mode moves a cursor through the selected project's tasks
	taskMode     bool
	taskSelected int

	// New project form
	formMode   bool
	formField  int
	nameInput  textinput.Model
	formDue    textinput.Model
	tasksInput textarea.Model
	formErrors []string

	// Single task append
	addTaskMode  bool
	addTaskInput textinput.Model

	// Due date edit
	dueMode  bool
	dueInput textinput.Model

	// Delete confirmation
	deleteConfirmMode bool
	deleteProjectID   int64
}

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	behindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// New creates a new application model
func New(store Store, opts Options) (*Model, error) {
	projects, err := store.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = project.DefaultWindowDays
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Model{
		store:        store,
		projects:     projects,
		window:       opts.WindowDays,
		now:          opts.Now,
		logger:       opts.Logger,
		filter:       newInput("Filter projects...", 50),
		nameInput:    newInput("Project name", 200),
		formDue:      newInput("YYYY-MM-DD (optional)", 10),
		tasksInput:   newTasksArea(),
		addTaskInput: newInput("title:size", 200),
		dueInput:     newInput("YYYY-MM-DD, empty clears", 10),
	}, nil
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = 40
	ti.CharLimit = limit
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	return ti
}

func newTasksArea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "One task per line, e.g.\nWrite the importer:3\nReview"
	ta.SetHeight(8)
	ta.SetWidth(50)
	ta.CharLimit = 10000
	ta.ShowLineNumbers = true
	return ta
}

// Run starts the program in the alternate screen
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 0 {
			m.filter.Width = m.width/3 - 4
		}
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			// Any key dismisses a storage error; q still quits
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			m.err = nil
			return m, nil
		}

		switch {
		case m.deleteConfirmMode:
			return m.updateDeleteConfirm(msg)
		case m.formMode:
			return m.updateForm(msg)
		case m.addTaskMode:
			return m.updateAddTask(msg)
		case m.dueMode:
			return m.updateDue(msg)
		case m.filterMode:
			return m.updateFilter(msg)
		case m.taskMode:
			return m.updateTasks(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.selected < len(m.filteredProjects())-1 {
			m.selected++
		}

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}

	case "/":
		m.filterMode = true
		m.filter.Reset()
		m.filter.Focus()
		return m, textinput.Blink

	case "esc":
		if m.filter.Value() != "" {
			m.filter.Reset()
			m.selected = m.ensureValidSelection()
		}

	case "o":
		m.offScheduleFilter = !m.offScheduleFilter
		m.selected = m.ensureValidSelection()

	case "C":
		m.offScheduleFilter = false
		m.filter.Reset()
		m.selected = m.ensureValidSelection()

	case "r":
		m.reload()

	case "n":
		return m.openForm()

	case "t", "enter":
		if p := m.selectedProject(); p != nil && len(p.Tasks) > 0 {
			m.taskMode = true
			m.taskSelected = 0
		}

	case "a":
		if m.selectedProject() != nil {
			m.addTaskMode = true
			m.addTaskInput.Reset()
			m.addTaskInput.Focus()
			return m, textinput.Blink
		}

	case "d":
		if p := m.selectedProject(); p != nil {
			m.dueMode = true
			m.dueInput.Reset()
			if p.DueDate != nil {
				m.dueInput.SetValue(p.DueDate.UTC().Format(workflow.DueDateLayout))
			}
			m.dueInput.Focus()
			return m, textinput.Blink
		}

	case "x":
		if p := m.selectedProject(); p != nil {
			m.deleteConfirmMode = true
			m.deleteProjectID = p.ID
		}
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		m.filter.Reset()
		m.selected = m.ensureValidSelection()
		return m, nil
	case "enter":
		m.filterMode = false
		m.filter.Blur()
		m.selected = m.ensureValidSelection()
		return m, nil
	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down":
		if m.selected < len(m.filteredProjects())-1 {
			m.selected++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.selected = m.ensureValidSelection()
	return m, cmd
}

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.selectedProject()
	if p == nil || len(p.Tasks) == 0 {
		m.taskMode = false
		return m, nil
	}

	switch msg.String() {
	case "esc", "t":
		m.taskMode = false
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.taskSelected < len(p.Tasks)-1 {
			m.taskSelected++
		}
	case "k", "up":
		if m.taskSelected > 0 {
			m.taskSelected--
		}
	case "c", " ", "space":
		m.toggleTask(p.Tasks[m.taskSelected])
	case "a":
		m.addTaskMode = true
		m.addTaskInput.Reset()
		m.addTaskInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// toggleTask completes a pending task or reopens a completed one
func (m *Model) toggleTask(t *project.Task) {
	var err error
	if t.Complete() {
		err = m.store.ReopenTask(t.ID)
		m.status = fmt.Sprintf("Reopened %q", t.Title)
	} else {
		err = m.store.CompleteTask(t.ID, m.now())
		m.status = fmt.Sprintf("Completed %q", t.Title)
	}
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.reload()
}

func (m Model) updateAddTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.addTaskMode = false
		m.addTaskInput.Reset()
		return m, nil
	case "enter":
		p := m.selectedProject()
		value := strings.TrimSpace(m.addTaskInput.Value())
		if p == nil || value == "" {
			m.addTaskMode = false
			return m, nil
		}
		spec := workflow.ParseTaskLine(value)
		task, err := m.store.AddTask(p.ID, spec.Title, spec.Size)
		if errors.Is(err, project.ErrInvalid) {
			// Keep the input so it can be corrected
			m.status = err.Error()
			return m, nil
		}
		if err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("Added %q", task.Title)
			m.reload()
		}
		m.addTaskMode = false
		m.addTaskInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.addTaskInput, cmd = m.addTaskInput.Update(msg)
	return m, cmd
}

func (m Model) updateDue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.dueMode = false
		return m, nil
	case "enter":
		p := m.selectedProject()
		if p == nil {
			m.dueMode = false
			return m, nil
		}
		due, err := workflow.ParseDueDate(m.dueInput.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if err := m.store.SetDueDate(p.ID, due); err != nil {
			m.err = err
		} else {
			m.reload()
		}
		m.dueMode = false
		return m, nil
	}

	var cmd tea.Cmd
	m.dueInput, cmd = m.dueInput.Update(msg)
	return m, cmd
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.DeleteProject(m.deleteProjectID); err != nil {
			m.err = err
		} else {
			m.status = "Project deleted"
			m.reload()
		}
	}
	// Any other key cancels
	m.deleteConfirmMode = false
	m.deleteProjectID = 0
	return m, nil
}

// openForm shows an empty new project form
func (m Model) openForm() (tea.Model, tea.Cmd) {
	m.formMode = true
	m.formErrors = nil
	m.nameInput.Reset()
	m.formDue.Reset()
	m.tasksInput.Reset()
	m.focusFormField(FormFieldName)
	if m.width > 0 {
		w := m.width/2 - 6
		m.nameInput.Width = w
		m.tasksInput.SetWidth(w)
	}
	return m, textinput.Blink
}

func (m *Model) focusFormField(field int) {
	m.formField = field
	m.nameInput.Blur()
	m.formDue.Blur()
	m.tasksInput.Blur()
	switch field {
	case FormFieldName:
		m.nameInput.Focus()
	case FormFieldDue:
		m.formDue.Focus()
	case FormFieldTasks:
		m.tasksInput.Focus()
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formMode = false
		m.formErrors = nil
		m.focusFormField(-1)
		return m, nil
	case "tab":
		m.focusFormField((m.formField + 1) % FormFieldCount)
		return m, textinput.Blink
	case "shift+tab":
		m.focusFormField((m.formField + FormFieldCount - 1) % FormFieldCount)
		return m, textinput.Blink
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.formField != FormFieldTasks {
			m.focusFormField(m.formField + 1)
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	switch m.formField {
	case FormFieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case FormFieldDue:
		m.formDue, cmd = m.formDue.Update(msg)
	case FormFieldTasks:
		m.tasksInput, cmd = m.tasksInput.Update(msg)
	}
	return m, cmd
}

// submitForm runs the creation workflow. On failure the form stays open
// with the entered text and the validation messages.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	due, err := workflow.ParseDueDate(m.formDue.Value())
	if err != nil {
		m.formErrors = []string{err.Error()}
		return m, nil
	}

	wf := workflow.NewCreateProject(m.store, m.nameInput.Value(), m.tasksInput.Value(),
		workflow.WithDueDate(due), workflow.WithLogger(m.logger))
	if err := wf.Create(); err != nil {
		m.formErrors = []string{err.Error()}
		return m, nil
	}
	if !wf.Success() {
		m.formErrors = formMessages(wf.Project())
		return m, nil
	}

	created := wf.Project()
	m.formMode = false
	m.formErrors = nil
	m.focusFormField(-1)
	m.filter.Reset()
	m.offScheduleFilter = false
	m.reload()
	m.selectProject(created.ID)
	m.status = fmt.Sprintf("Created %q with %d tasks", created.Name, len(created.Tasks))
	return m, nil
}

// formMessages flattens project and task errors for display
func formMessages(p *project.Project) []string {
	messages := p.Errors.Full()
	if len(messages) == 0 {
		messages = []string{"Project could not be saved"}
	}
	return messages
}

// reload refreshes projects from the store, keeping the selection on the
// same project when it still exists
func (m *Model) reload() {
	var keep int64
	if p := m.selectedProject(); p != nil {
		keep = p.ID
	}

	projects, err := m.store.ListProjects()
	if err != nil {
		m.err = err
		return
	}
	m.projects = projects
	m.selectProject(keep)

	if p := m.selectedProject(); p != nil && m.taskSelected >= len(p.Tasks) {
		m.taskSelected = len(p.Tasks) - 1
	}
	if m.taskSelected < 0 {
		m.taskSelected = 0
	}
}

func (m *Model) selectProject(id int64) {
	for i, p := range m.filteredProjects() {
		if p.ID == id {
			m.selected = i
			return
		}
	}
	m.selected = m.ensureValidSelection()
}

// filteredProjects returns projects matching the current filters
func (m Model) filteredProjects() []*project.Project {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	now := m.now()

	var filtered []*project.Project
	for _, p := range m.projects {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if m.offScheduleFilter && (p.Done() || p.OnSchedule(now, m.window)) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func (m Model) selectedProject() *project.Project {
	projects := m.filteredProjects()
	if len(projects) == 0 || m.selected < 0 || m.selected >= len(projects) {
		return nil
	}
	return projects[m.selected]
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	projects := m.filteredProjects()
	if len(projects) == 0 {
		return 0
	}
	if m.selected >= len(projects) {
		return len(projects) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}
