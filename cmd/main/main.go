package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/matt-steen/taskboard/pkg/config"
	"github.com/matt-steen/taskboard/pkg/controller"
	"github.com/matt-steen/taskboard/pkg/engine"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/report"
	"github.com/matt-steen/taskboard/pkg/views"
)

const dateLayout = "2006-01-02"

var (
	configPath string
	debug      bool

	logFile *os.File
	board   *engine.Engine
	actor   engine.Actor
)

var rootCmd = &cobra.Command{
	Use:               "taskboard",
	Short:             "Kanban board for projects, phases and tasks",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := controller.NewController(board, actor)
		if err != nil {
			return err
		}

		return c.Go()
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show due counts and recent activity",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(report.Summary(board))
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the project hierarchy",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(report.Tree(board))
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks <project>",
	Short: "List the tasks of a project",
	Long: `List the tasks of a project, by id or name, narrowed by optional filters.

Examples:
  taskboard tasks "Redesign App"
  taskboard tasks "Redesign App" --search mockup --priority High
  taskboard tasks "Marketing Website" --from 2025-01-01 --to 2025-01-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, ok := report.FindProject(board, args[0])
		if !ok {
			return fmt.Errorf("project not found: %s", args[0])
		}

		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		fmt.Print(report.Tasks(board, project, board.FilterTasks(project.ID, f)))

		return nil
	},
}

func filterFromFlags(cmd *cobra.Command) (views.Filter, error) {
	f := views.Filter{}

	f.Search, _ = cmd.Flags().GetString("search")

	if name, _ := cmd.Flags().GetString("assignee"); name != "" {
		u, ok := board.UserByName(name)
		if !ok {
			return f, fmt.Errorf("unknown assignee: %s", name)
		}

		f.AssigneeID = u.ID
	}

	priority, _ := cmd.Flags().GetString("priority")
	f.Priority = models.Priority(priority)

	if !f.Priority.Valid() {
		return f, fmt.Errorf("unknown priority: %s", priority)
	}

	if status, _ := cmd.Flags().GetString("status"); status != "" {
		f.Status = models.Status(status)
		if !f.Status.Valid() {
			return f, fmt.Errorf("unknown status: %s", status)
		}
	}

	for flag, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		text, _ := cmd.Flags().GetString(flag)
		if text == "" {
			continue
		}

		d, err := time.ParseInLocation(dateLayout, text, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --%s date %q: %w", flag, text, err)
		}

		*dst = &d
	}

	return f, nil
}

// setup loads the config, starts logging and builds the engine for every command.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error

		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := startLogging(cfg); err != nil {
		return err
	}

	log.Info().Str("config", path).Msg("starting application...")

	opts, err := engine.ConfigOptions(cfg)
	if err != nil {
		return err
	}

	board = engine.New(opts...)

	if cfg.SeedDemoData {
		if _, err := engine.Seed(board); err != nil {
			return err
		}
	}

	users := board.Users()
	if len(users) == 0 {
		return fmt.Errorf("no users to act as; enable seed_demo_data")
	}

	actor = engine.Actor{UserID: users[0].ID}
	if u, ok := board.UserByName(cfg.ActingUser); ok {
		actor.UserID = u.ID
	} else {
		log.Warn().Str("acting_user", cfg.ActingUser).Msgf("unknown acting user, using '%s'", users[0].Name)
	}

	return nil
}

func startLogging(cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	if debug {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	dirPerms := 0o755
	filePerms := 0o666

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), fs.FileMode(dirPerms)); err != nil {
		return fmt.Errorf("error creating log directory: %w", err)
	}

	logFile, err = os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		return fmt.Errorf("error opening log file %s: %w", cfg.LogFile, err)
	}

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.taskboard/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")

	tasksCmd.Flags().StringP("search", "s", "", "case-insensitive text in title or description")
	tasksCmd.Flags().StringP("assignee", "a", "", "assignee name")
	tasksCmd.Flags().StringP("priority", "p", "", "High, Medium or Low")
	tasksCmd.Flags().String("status", "", "Todo, In Progress, In Review or Done")
	tasksCmd.Flags().String("from", "", "earliest due date (YYYY-MM-DD)")
	tasksCmd.Flags().String("to", "", "latest due date (YYYY-MM-DD), inclusive")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(tasksCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
