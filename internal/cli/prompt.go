package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/pdxmph/gatherer/internal/workflow"
)

// newProjectInput holds the raw fields of the new project form
type newProjectInput struct {
	Name  string
	Due   string
	Tasks string
}

// promptNewProject asks for the project fields, starting from in
func promptNewProject(in *newProjectInput) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name can't be blank")
					}
					return nil
				}),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD, optional").
				Value(&in.Due).
				Validate(func(s string) error {
					_, err := workflow.ParseDueDate(s)
					return err
				}),
			huh.NewText().
				Title("Tasks").
				Description("One per line as title:size; size defaults to 1").
				Lines(8).
				Value(&in.Tasks),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// confirm displays a yes/no prompt
func confirm(message string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// isInteractive returns true if stdin is a terminal
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
