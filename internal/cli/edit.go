package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdxmph/gatherer/internal/project"
	"github.com/pdxmph/gatherer/internal/workflow"
)

func (a *app) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as completed now",
		Long:  "Mark a task as completed. Completing a task twice keeps the first completion time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.CompleteTask(id, a.now()); err != nil {
				return notFound("task", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed task %d\n", id)
			return nil
		},
	}
}

func (a *app) reopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <task-id>",
		Short: "Mark a completed task as pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return err
			}
			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.ReopenTask(id); err != nil {
				return notFound("task", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reopened task %d\n", id)
			return nil
		},
	}
}

func (a *app) addTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-task <project-id> <title[:size]>",
		Short: "Append a task to a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			spec := workflow.ParseTaskLine(strings.Join(args[1:], " "))

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			task, err := database.AddTask(id, spec.Title, spec.Size)
			if errors.Is(err, project.ErrInvalid) {
				return err
			}
			if err != nil {
				return notFound("project", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d %q (size %d) at position %d\n",
				task.ID, task.Title, task.Size, task.Order)
			return nil
		},
	}
}

func (a *app) dueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due <project-id> <YYYY-MM-DD|none>",
		Short: "Set or clear a project's due date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			value := args[1]
			if strings.EqualFold(value, "none") {
				value = ""
			}
			due, err := workflow.ParseDueDate(value)
			if err != nil {
				return err
			}

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.SetDueDate(id, due); err != nil {
				return notFound("project", id, err)
			}
			if due == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared due date of project %d\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Project %d is due %s\n", id, due.Format(workflow.DueDateLayout))
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			p, err := database.GetProject(id)
			if err != nil {
				return notFound("project", id, err)
			}

			if !yes {
				if !a.interactive() {
					return fmt.Errorf("refusing to delete project %d without --yes", id)
				}
				ok, err := confirm(fmt.Sprintf("Delete %q and its %d tasks?", p.Name, len(p.Tasks)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := database.DeleteProject(id); err != nil {
				return notFound("project", id, err)
			}
			a.logger.Info("Deleted project", "id", id, "name", p.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d %q\n", id, p.Name)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
