package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/pdxmph/gatherer/internal/config"
	"github.com/pdxmph/gatherer/internal/db"
	"github.com/pdxmph/gatherer/internal/report"
)

func (a *app) initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty database",
		Long: `Create the SQLite database at the configured path.

With --fixtures the database is seeded with sample projects.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, _ := cmd.Flags().GetBool("fixtures")
			path := a.cfg.Database.Path

			if fixtures {
				if err := db.CreateFixturesDatabase(path); err != nil {
					return err
				}
			} else if err := db.Initialize(path); err != nil {
				return err
			}

			a.logger.Info("Initialized database", "path", path, "fixtures", fixtures)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized database at %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("fixtures", false, "Seed the database with sample projects")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects with their forecasts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			formatter, err := report.NewFormatter(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			projects, err := database.ListProjects()
			if err != nil {
				return err
			}
			return formatter.Format(report.Summaries(projects, a.now(), a.cfg.Forecast.WindowDays))
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project, its tasks and its forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			formatter, err := report.NewFormatter(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			p, err := database.GetProject(id)
			if err != nil {
				return notFound("project", id, err)
			}
			return formatter.Format(report.NewSummary(p, a.now(), a.cfg.Forecast.WindowDays, true))
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file, GATHERER_* environment
variables and flags have been applied.

With --write the default configuration file is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			write, _ := cmd.Flags().GetBool("write")
			if write {
				path := a.configPath
				if path == "" {
					dir, err := config.Dir()
					if err != nil {
						return err
					}
					path = filepath.Join(dir, "config.toml")
				}
				if err := a.cfg.SaveTo(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(a.cfg)
		},
	}
	cmd.Flags().Bool("write", false, "Write the effective configuration to the config file")
	return cmd
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml")
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

// notFound gives ErrNotFound a friendlier message and passes other errors through
func notFound(kind string, id int64, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, db.ErrNotFound)
	}
	return err
}
