package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdxmph/gatherer/internal/report"
	"github.com/pdxmph/gatherer/internal/workflow"
)

// ErrNotSaved is returned when a new project fails validation
var ErrNotSaved = errors.New("project was not saved")

func (a *app) newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a project from a name and task text",
		Long: `Create a project and all of its tasks in one step.

Task text has one task per line written as "title:size". The size must be a
whole number greater than zero and defaults to 1 when omitted. Text after the
last colon that is not a number stays part of the title, so "Fix: login" is a
task titled "Fix: login" of size 1.

Nothing is saved unless the name and every task are valid.`,
		Example: `  gatherer new --name "Website relaunch" --tasks $'Audit pages:2\nPort blog:5' --due 2026-06-01
  gatherer new --name Launch --tasks-file tasks.txt
  gatherer new --name Launch --import-tag launch
  gatherer new --interactive`,
		Args: cobra.NoArgs,
		RunE: a.runNew,
	}

	cmd.Flags().String("name", "", "Project name")
	cmd.Flags().String("tasks", "", "Task text, one title:size per line")
	cmd.Flags().String("tasks-file", "", "Read task text from a file, - for stdin")
	cmd.Flags().String("import-tag", "", "Append pending tasks with this tag from the task manager")
	cmd.Flags().String("due", "", "Due date as YYYY-MM-DD")
	cmd.Flags().BoolP("interactive", "i", false, "Fill in the project with a form")
	return cmd
}

func (a *app) runNew(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	taskText, _ := cmd.Flags().GetString("tasks")
	tasksFile, _ := cmd.Flags().GetString("tasks-file")
	importTag, _ := cmd.Flags().GetString("import-tag")
	due, _ := cmd.Flags().GetString("due")
	interactive, _ := cmd.Flags().GetBool("interactive")

	parts := []string{taskText}
	if tasksFile != "" {
		text, err := readTaskFile(tasksFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		parts = append(parts, text)
	}
	if importTag != "" {
		text, err := a.importTasks(importTag)
		if err != nil {
			return err
		}
		a.logger.Debug("Imported tasks", "tag", importTag, "lines", strings.Count(text, "\n")+1)
		parts = append(parts, text)
	}
	input := newProjectInput{Name: name, Due: due, Tasks: joinTaskText(parts)}

	if interactive {
		if !a.interactive() {
			return errors.New("--interactive requires a terminal, use --name and --tasks instead")
		}
		if err := promptNewProject(&input); err != nil {
			return err
		}
	}

	dueDate, err := workflow.ParseDueDate(input.Due)
	if err != nil {
		return err
	}

	database, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	wf := workflow.NewCreateProject(database, input.Name, input.Tasks,
		workflow.WithDueDate(dueDate), workflow.WithLogger(a.logger))
	if err := wf.Create(); err != nil {
		return err
	}

	p := wf.Project()
	if !wf.Success() {
		messages := p.Errors.Full()
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "%d error(s) prohibited this project from being saved:\n", len(messages))
		for _, msg := range messages {
			fmt.Fprintf(errOut, "  - %s\n", msg)
		}
		return ErrNotSaved
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created project #%d %q with %d tasks\n\n", p.ID, p.Name, len(p.Tasks))
	formatter, err := report.NewFormatter("text", out)
	if err != nil {
		return err
	}
	return formatter.Format(report.NewSummary(p, a.now(), a.cfg.Forecast.WindowDays, true))
}

// importTasks pulls task text from the configured task manager
func (a *app) importTasks(tag string) (string, error) {
	manager, err := a.taskManager(a.cfg.Tasks.Backend)
	if err != nil {
		return "", err
	}
	return manager.ImportLines(tag)
}

func readTaskFile(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading tasks from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading tasks file: %w", err)
	}
	return string(data), nil
}

// joinTaskText concatenates task text blocks, skipping empty ones
func joinTaskText(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimRight(p, "\r\n"); strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
