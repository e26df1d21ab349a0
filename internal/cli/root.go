// Package cli wires the gatherer commands together.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdxmph/gatherer/internal/config"
	"github.com/pdxmph/gatherer/internal/db"
	"github.com/pdxmph/gatherer/internal/logging"
	"github.com/pdxmph/gatherer/internal/project"
	"github.com/pdxmph/gatherer/internal/tasks"
	"github.com/pdxmph/gatherer/internal/tui"

	// Task import backends register themselves
	_ "github.com/pdxmph/gatherer/internal/tasks/dstask"
	_ "github.com/pdxmph/gatherer/internal/tasks/taskwarrior"
)

// app carries the resolved settings shared by every command
type app struct {
	configPath string
	dbPath     string
	windowDays int
	logLevel   string

	cfg         *config.Config
	logger      *log.Logger
	now         func() time.Time
	taskManager func(backend string) (*tasks.Manager, error)
	interactive func() bool
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{
		now:         time.Now,
		taskManager: tasks.NewManager,
		interactive: isInteractive,
	}, version)
}

func newRootCmd(a *app, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gatherer",
		Short: "Track sized tasks and forecast when projects will finish",
		Long: `gatherer keeps projects made of sized tasks in a local SQLite database and
projects a finish date from the pace of recently completed work.

Run without a subcommand to open the interactive view.`,
		Version:           version,
		PersistentPreRunE: a.setup,
		RunE:              a.runBrowse,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.config/gatherer/config.toml)")
	flags.StringVar(&a.dbPath, "db", "", "Database path, overrides config")
	flags.IntVar(&a.windowDays, "window", 0, "Trailing window in days for velocity and rate, overrides config")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		a.initCmd(),
		a.listCmd(),
		a.showCmd(),
		a.newCmd(),
		a.completeCmd(),
		a.reopenCmd(),
		a.addTaskCmd(),
		a.dueCmd(),
		a.deleteCmd(),
		a.configCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// setup loads config, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.windowDays != 0 {
		if a.windowDays < 0 || a.windowDays > project.MaxWindowDays {
			return fmt.Errorf("--window must be between 1 and %d, got %d", project.MaxWindowDays, a.windowDays)
		}
		cfg.Forecast.WindowDays = a.windowDays
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	opts := logging.DefaultOptions()
	opts.Level = cfg.Log.Level
	opts.Output = cmd.ErrOrStderr()
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openDB opens the configured database with the command logger
func (a *app) openDB() (*db.DB, error) {
	database, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	database.SetLogger(a.logger)
	return database, nil
}

func (a *app) runBrowse(cmd *cobra.Command, args []string) error {
	database, err := a.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	// Info lines on stderr would tear the alternate screen
	quiet := a.logger.With()
	quiet.SetLevel(log.ErrorLevel)
	database.SetLogger(quiet)

	model, err := tui.New(database, tui.Options{
		WindowDays: a.cfg.Forecast.WindowDays,
		Now:        a.now,
		Logger:     quiet,
	})
	if err != nil {
		return err
	}
	return tui.Run(model)
}
