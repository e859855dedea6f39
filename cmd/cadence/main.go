package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/cli/ai"
	"github.com/julianstephens/cadence/internal/cli/backups"
	"github.com/julianstephens/cadence/internal/cli/plans"
	"github.com/julianstephens/cadence/internal/cli/settings"
	"github.com/julianstephens/cadence/internal/cli/system"
	"github.com/julianstephens/cadence/internal/cli/tasks"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/constants"
	cerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/storage"
)

type CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Storage location: a SQLite path, a .json path or a PostgreSQL connection string without a password." default:"${default_config}" env:"CADENCE_CONFIG"`
	Services string `help:"Service configuration file (YAML)." default:"${default_services}" env:"CADENCE_SERVICES"`
	LogDebug bool   `name:"debug" help:"Write debug logs to stderr."`

	Init       system.InitCmd      `cmd:"" help:"Initialize cadence storage."`
	Tui        system.TuiCmd       `cmd:"" help:"Launch the interactive planner." default:"1"`
	Plan       plans.PlanCmd       `cmd:"" help:"Show the plan for the planning window."`
	Day        plans.DayCmd        `cmd:"" help:"Show the plan for one day."`
	Complete   plans.CompleteCmd   `cmd:"" help:"Complete a task occurrence."`
	Skip       plans.SkipCmd       `cmd:"" help:"Skip a task occurrence."`
	Reschedule plans.RescheduleCmd `cmd:"" help:"Move a task occurrence to another day."`
	History    plans.HistoryCmd    `cmd:"" help:"Show completed and skipped work."`
	Task       struct {
		Add     tasks.TaskAddCmd     `cmd:"" help:"Add a new task."`
		Edit    tasks.TaskEditCmd    `cmd:"" help:"Edit an existing task."`
		Delete  tasks.TaskDeleteCmd  `cmd:"" help:"Delete a task."`
		List    tasks.TaskListCmd    `cmd:"" help:"List all tasks."`
		Restore tasks.TaskRestoreCmd `cmd:"" help:"Restore a deleted task."`
	} `cmd:"" help:"Manage tasks."`
	AI struct {
		Plan ai.AIPlanCmd `cmd:"" help:"Ask the AI service to plan a week."`
	} `cmd:"" name:"ai" help:"AI-assisted planning."`
	Settings struct {
		Show settings.SettingsShowCmd `cmd:"" help:"Show settings." default:"1"`
		Set  settings.SettingsSetCmd  `cmd:"" help:"Change settings."`
	} `cmd:"" help:"Manage planner settings."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
	Validate system.ValidateCmd `cmd:"" help:"Validate tasks and the plan for conflicts."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stdin); err != nil {
		cerrors.Fatal(err)
	}
}

func newParser(app *CLI, stdout io.Writer) (*kong.Kong, error) {
	return kong.New(app,
		kong.Name(constants.AppName),
		kong.Description("Personal task planner with recurring, floating and one-off work"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Writers(stdout, os.Stderr),
		kong.Vars{
			"version":          constants.Version,
			"default_config":   constants.DefaultConfigPath,
			"default_services": constants.DefaultServicesPath,
			"history_limit":    strconv.Itoa(constants.DefaultHistoryLimit),
		},
	)
}

func run(args []string, stdout io.Writer, stdin io.Reader) error {
	var app CLI
	parser, err := newParser(&app, stdout)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(false)
		}
		return err
	}

	if err := logger.Init(logger.Config{
		Debug:     app.LogDebug,
		ConfigDir: filepath.Dir(config.ExpandPath(app.Services)),
	}); err != nil {
		return err
	}

	services, err := config.Load(app.Services)
	if err != nil {
		return err
	}

	command := strings.Fields(kctx.Command())[0]
	logger.Debug("running command", "command", kctx.Command())

	var store storage.Provider
	if command != "keyring" {
		store, err = cli.OpenStore(app.Config, services)
		if err != nil {
			return err
		}
		defer store.Close()

		// init creates the store and doctor reports load failures itself
		if command != "init" && command != "doctor" {
			if err := store.Load(); err != nil {
				return err
			}
		}
	}

	appCtx := cli.NewContext(store, services)
	appCtx.ServicesPath = app.Services
	appCtx.Out = stdout
	appCtx.In = stdin

	return kctx.Run(appCtx)
}
