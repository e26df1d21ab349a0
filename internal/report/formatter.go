package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Formatter writes summaries in one output format
type Formatter interface {
	Format(data interface{}) error
}

// NewFormatter creates a formatter based on the format string
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	if w == nil {
		w = os.Stdout
	}

	switch format {
	case "json":
		return &JSONFormatter{w: w}, nil
	case "yaml":
		return &YAMLFormatter{w: w}, nil
	case "text", "":
		return &TextFormatter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter formats output as indented JSON
type JSONFormatter struct {
	w io.Writer
}

// Format writes data as JSON
func (f *JSONFormatter) Format(data interface{}) error {
	encoder := json.NewEncoder(f.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	w io.Writer
}

// Format writes data as YAML
func (f *YAMLFormatter) Format(data interface{}) error {
	encoder := yaml.NewEncoder(f.w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// TextFormatter formats summaries as human-readable text
type TextFormatter struct {
	w io.Writer
}

// Format writes a Summary as a detail block and []Summary as a table
func (f *TextFormatter) Format(data interface{}) error {
	var out string
	switch v := data.(type) {
	case Summary:
		out = detailText(v)
	case []Summary:
		out = listText(v)
	case string:
		out = v
	case fmt.Stringer:
		out = v.String()
	default:
		return fmt.Errorf("text formatter cannot render %T", data)
	}
	_, err := fmt.Fprintln(f.w, out)
	return err
}

func scheduleText(s Summary) string {
	label := ScheduleLabel(s)
	switch label {
	case "done", "on schedule":
		return doneStyle.Render(label)
	case "behind":
		return lateStyle.Render(label)
	}
	return label
}

func projectionText(s Summary) string {
	switch {
	case s.ProjectedDays != nil && *s.ProjectedDays < 1:
		return "under a day"
	case s.ProjectedDays != nil:
		return fmt.Sprintf("%.1f days", *s.ProjectedDays)
	case s.Projection == "infinite":
		return "never at current pace"
	default:
		return "nothing to project"
	}
}

func detailText(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(s.Name), labelStyle.Render(fmt.Sprintf("#%d", s.ID)))

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	row("Progress", fmt.Sprintf("%d/%d tasks, %d of %d points left",
		s.CompletedTasks, s.TotalTasks, s.RemainingSize, s.TotalSize))
	row("Velocity", fmt.Sprintf("%d points in %d days", s.Velocity, s.WindowDays))
	row("Rate", fmt.Sprintf("%.2f tasks/day", s.Rate))
	row("Projection", projectionText(s))
	if s.ProjectedFinish != "" {
		row("Finish", s.ProjectedFinish)
	}
	due := s.DueDate
	if due == "" {
		due = "-"
	}
	row("Due", due)
	row("Schedule", scheduleText(s))

	if len(s.Tasks) > 0 {
		b.WriteString("\n")
		for _, t := range s.Tasks {
			mark := "[ ]"
			if t.CompletedAt != "" {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "  %s %2d. %s %s\n", mark, t.Order, t.Title,
				labelStyle.Render(fmt.Sprintf("(%d)", t.Size)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func listText(rows []Summary) string {
	if len(rows) == 0 {
		return "No projects yet. Create one with 'gatherer new'."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s  %-28s  %9s  %-22s  %-10s  %s\n",
		"ID", "NAME", "LEFT", "PROJECTION", "DUE", "SCHEDULE")
	for _, s := range rows {
		name := s.Name
		if r := []rune(name); len(r) > 28 {
			name = string(r[:25]) + "..."
		}
		due := s.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(&b, "%-4d  %-28s  %9s  %-22s  %-10s  %s\n",
			s.ID, name, fmt.Sprintf("%d/%d", s.RemainingSize, s.TotalSize),
			projectionText(s), due, ScheduleLabel(s))
	}
	return strings.TrimRight(b.String(), "\n")
}

var _ Formatter = (*JSONFormatter)(nil)
var _ Formatter = (*YAMLFormatter)(nil)
var _ Formatter = (*TextFormatter)(nil)
