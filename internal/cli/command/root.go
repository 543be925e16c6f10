package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/cli/output"
	"github.com/yndnr/padbreak/internal/config"
	"github.com/yndnr/padbreak/internal/infra/buildinfo"
	"github.com/yndnr/padbreak/internal/infra/confloader"
	"github.com/yndnr/padbreak/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "padbreak",
		Usage:   "Recover a reused one-time-pad keystream by crib-dragging",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RecoverCommand(),
			WatchCommand(),
			GenerateCommand(),
			HistoryCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		EnableBashCompletion: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"PADBREAK_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
	}
}

// flagBinding maps a command-line flag onto a configuration key.
type flagBinding struct {
	flag string
	key  string
}

// flagBindings lists every flag that overrides configuration. Flags of
// parent commands are found through the context lineage.
var flagBindings = []flagBinding{
	{"output", "output.format"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
	{"allowed", "engine.allowed"},
	{"placeholder", "engine.placeholder"},
	{"workers", "engine.workers"},
	{"pair-workers", "engine.pair_workers"},
	{"cribs", "cribs.file"},
	{"encoding", "input.encoding"},
	{"pattern", "input.pattern"},
	{"settle", "input.settle"},
	{"show-plaintext", "output.show_plaintext"},
	{"progress", "output.progress"},
	{"state-dir", "state.dir"},
	{"passphrase", "state.passphrase"},
	{"metrics-file", "metrics.textfile"},
	{"metrics-addr", "metrics.addr"},
}

// flagOverrides collects the flags the user set explicitly.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for _, b := range flagBindings {
		if c.IsSet(b.flag) {
			overrides[b.key] = c.Value(b.flag)
		}
	}
	return overrides
}

// Runtime is the per-invocation environment shared by all commands.
type Runtime struct {
	Config *config.Config
	Log    logger.Logger
	Out    io.Writer
	Err    io.Writer
}

// loadRuntime loads and verifies the configuration and initialises the
// logger.
func loadRuntime(c *cli.Context) (*Runtime, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithOverrides(flagOverrides(c)),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt := &Runtime{
		Config: cfg,
		Out:    writerOr(c.App.Writer, os.Stdout),
		Err:    writerOr(c.App.ErrWriter, os.Stderr),
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: rt.Err,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	rt.Log = log

	log.Debug("configuration loaded", "config", c.String("config"), "state_dir", cfg.State.Dir)
	return rt, nil
}

// Print formats data in the configured output format.
func (rt *Runtime) Print(data any) error {
	format, err := output.ParseFormat(rt.Config.Output.Format)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(rt.Out, data)
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
