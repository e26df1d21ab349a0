package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/gatherer/internal/project"
	"github.com/pdxmph/gatherer/internal/report"
)

// View renders the UI
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to continue, q to quit.", m.err)
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.formMode {
		return m.renderForm()
	}
	if m.deleteConfirmMode {
		return m.renderDeleteConfirmation()
	}

	listWidth := m.width / 3
	detailWidth := m.width - listWidth - 3

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(m.height-3).Render(m.renderList(listWidth, m.height-3)),
		borderStyle.Width(detailWidth).Height(m.height-3).Render(m.renderDetail(detailWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelp())
}

// projectMarker is the one-character schedule indicator in the list
func (m Model) projectMarker(p *project.Project) string {
	switch {
	case p.Done():
		return doneStyle.Render("✓")
	case p.DueDate != nil && !p.OnSchedule(m.now(), m.window):
		return behindStyle.Render("!")
	}
	return " "
}

// renderList renders the project list
func (m Model) renderList(width, height int) string {
	var lines []string
	if m.filterMode {
		lines = append(lines, m.filter.View(), "")
		height -= 2
	}

	projects := m.filteredProjects()

	visibleHeight := height - 2
	startIdx := 0
	if m.selected >= visibleHeight {
		startIdx = m.selected - visibleHeight + 1
	}

	header := fmt.Sprintf("Projects (%d)", len(projects))
	var indicators []string
	if m.offScheduleFilter {
		indicators = append(indicators, "off schedule")
	}
	if !m.filterMode && m.filter.Value() != "" {
		indicators = append(indicators, "name:"+m.filter.Value())
	}
	if len(indicators) > 0 {
		header += " [" + strings.Join(indicators, ", ") + "]"
	}
	lines = append(lines, header, strings.Repeat("─", max(width-2, 0)))

	for i := startIdx; i < len(projects) && i < startIdx+visibleHeight; i++ {
		p := projects[i]
		left := fmt.Sprintf("%d/%d", p.RemainingSize(), p.TotalSize())
		line := p.Name + " " + labelStyle.Render(left)
		if i == m.selected {
			line = selectedStyle.Render(p.Name + " " + left)
		}
		lines = append(lines, m.projectMarker(p)+" "+line)
	}
	return strings.Join(lines, "\n")
}

// renderDetail renders the forecast and tasks of the selected project
func (m Model) renderDetail(width int) string {
	p := m.selectedProject()
	if p == nil {
		return "No project selected. Press n to create one."
	}

	now := m.now()
	s := report.NewSummary(p, now, m.window, false)
	f := p.Forecast(now, m.window)

	var lines []string
	lines = append(lines, p.Name, strings.Repeat("─", max(width-2, 0)), "")

	row := func(label, value string) {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-12s", label))+value)
	}
	row("Progress", fmt.Sprintf("%d/%d tasks, %d of %d points left",
		s.CompletedTasks, s.TotalTasks, s.RemainingSize, s.TotalSize))
	row("Velocity", fmt.Sprintf("%d points in the last %d days", s.Velocity, s.WindowDays))
	row("Rate", fmt.Sprintf("%.2f tasks/day", f.Rate))
	row("Projection", report.DescribeProjection(f.Projection))
	if s.ProjectedFinish != "" {
		row("Finish", s.ProjectedFinish)
	}
	if s.DueDate != "" {
		row("Due", s.DueDate)
	} else {
		row("Due", labelStyle.Render("none"))
	}
	schedule := report.ScheduleLabel(s)
	switch schedule {
	case "behind":
		schedule = behindStyle.Render(schedule)
	case "on schedule", "done":
		schedule = doneStyle.Render(schedule)
	}
	row("Schedule", schedule)
	lines = append(lines, "")

	if m.dueMode {
		lines = append(lines, "Due date:", m.dueInput.View(), "")
	}

	lines = append(lines, "Tasks:")
	for i, t := range p.Tasks {
		mark := "[ ]"
		if t.Complete() {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (%d)", mark, t.Title, t.Size)
		if m.taskMode && i == m.taskSelected {
			line = selectedStyle.Render(line)
		} else if t.Complete() {
			line = labelStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(p.Tasks) == 0 {
		lines = append(lines, labelStyle.Render("  none yet, press a to add one"))
	}

	if m.addTaskMode {
		lines = append(lines, "", "New task (title:size):", m.addTaskInput.View())
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	var help string
	switch {
	case m.addTaskMode:
		help = " Type title:size • Enter: add • Esc: cancel"
	case m.dueMode:
		help = " Type YYYY-MM-DD, empty clears • Enter: save • Esc: cancel"
	case m.filterMode:
		help = " Type to filter • ↑/↓: navigate • Enter: confirm • Esc: cancel"
	case m.taskMode:
		help = " j/k: navigate • c/space: toggle done • a: add task • Esc: back"
	default:
		help = " j/k: navigate • /: filter • o: off schedule • n: new • t: tasks • a: add task • d: due • x: delete"
		if m.offScheduleFilter || m.filter.Value() != "" {
			help += " • C: clear"
		}
		help += " • q: quit"
	}

	if m.status != "" {
		return help + "\n " + m.status
	}
	return help
}

// renderForm renders the new project overlay
func (m Model) renderForm() string {
	var lines []string
	lines = append(lines, "New project", "")

	field := func(idx int, label, view string) {
		if idx == m.formField {
			label = selectedStyle.Render(label)
		}
		lines = append(lines, label, view, "")
	}
	field(FormFieldName, "Name", m.nameInput.View())
	field(FormFieldDue, "Due date", m.formDue.View())
	field(FormFieldTasks, "Tasks (title:size per line)", m.tasksInput.View())

	if len(m.formErrors) > 0 {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("%d error(s) prevented this project from being saved:", len(m.formErrors))))
		for _, e := range m.formErrors {
			lines = append(lines, errorStyle.Render("  • "+e))
		}
		lines = append(lines, "")
	}
	lines = append(lines, "Tab: next field • Ctrl+S: create • Esc: cancel")

	return m.centered(strings.Join(lines, "\n"))
}

// renderDeleteConfirmation renders the delete prompt
func (m Model) renderDeleteConfirmation() string {
	name := "this project"
	for _, p := range m.projects {
		if p.ID == m.deleteProjectID {
			name = fmt.Sprintf("%q", p.Name)
			break
		}
	}
	content := fmt.Sprintf("Delete %s and all of its tasks?\n\ny: delete • any other key: cancel", name)
	return m.centered(content)
}

// centered draws content in a bordered box in the middle of the screen
func (m Model) centered(content string) string {
	box := borderStyle.
		Padding(1).
		Background(lipgloss.Color("235")).
		Render(content)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}
