package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aristath/agentboard/internal/config"
	"github.com/aristath/agentboard/internal/project"
)

// options holds the global flags shared by every subcommand.
type options struct {
	configPath  string
	projectPath string
	verbose     bool
	logFile     string
	metricsAddr string

	cfg            *config.Config
	globalPath     string // Settings pane save targets
	projectCfgPath string
	logger         *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "agentboard",
		Short: "Simulated multi-agent task board",
		Long: `agentboard drives a project plan through Backlog, In Progress,
Needs Review and Done with a bounded pool of simulated agents.

Run without a subcommand to open the interactive board.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.agentboard and .agentboard)")
	flags.StringVarP(&opts.projectPath, "project", "p", "", "project plan file (.json, .yaml, .toml); built-in sample when empty")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.logFile, "log-file", "", "write operational logs to this file")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(
		newRunCmd(opts),
		newHeadlessCmd(opts),
		newValidateCmd(opts),
		newSampleCmd(opts),
	)
	return root
}

// setup loads configuration and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	var err error
	if o.configPath != "" {
		o.globalPath, o.projectCfgPath = o.configPath, o.configPath
		o.cfg, err = config.Load(o.configPath, "")
	} else {
		o.globalPath, o.projectCfgPath, err = config.DefaultPaths()
		if err == nil {
			o.cfg, err = config.LoadDefault()
		}
	}
	if err != nil {
		return err
	}

	o.logger, err = o.buildLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// buildLogger follows the config's log level, raised to debug by --verbose.
// The interactive board owns the terminal, so it only logs with --log-file.
func (o *options) buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	interactive := cmd.Name() == "run" || cmd.Name() == "agentboard"
	if interactive && o.logFile == "" {
		return zap.NewNop(), nil
	}

	zcfg := zap.NewProductionConfig()
	if o.cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(o.cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if o.verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if o.logFile != "" {
		zcfg.OutputPaths = []string{o.logFile}
		zcfg.ErrorOutputPaths = []string{o.logFile}
	}
	return zcfg.Build()
}

// loadProject reads --project, falling back to the built-in sample.
func (o *options) loadProject() (project.Project, error) {
	if o.projectPath == "" {
		return project.Sample(), nil
	}
	return project.Load(o.projectPath)
}
