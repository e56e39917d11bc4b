package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/config"
	"github.com/its-jojoo/ottervault/internal/logger"
)

const logLevelEnv = "OTTERVAULT_LOG_LEVEL"

// options holds the persistent flags and the config they resolve to.
type options struct {
	configPath string
	logLevel   string
	backend    string
	path       string
	assumeYes  bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ottervault",
		Short: "Local vault for clipboard pastes",
		Long: `ottervault keeps links, images, text and articles pasted from the clipboard
in a searchable newest-first collection. Items are stored in SQLite by default,
or in a directory of JSON files that other processes can edit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/ottervault/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.backend, "backend", "", "Storage backend (sqlite, file, memory)")
	pf.StringVar(&opts.path, "path", "", "SQLite database file or file store directory")
	pf.BoolVarP(&opts.assumeYes, "yes", "y", false, "Skip confirmation prompts")

	root.AddCommand(
		newPasteCmd(opts),
		newListCmd(opts),
		newQueryCmd(opts),
		newRmCmd(opts),
		newClearCmd(opts),
		newExportCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load resolves the config file, then flags. The log level comes from
// --log-level, then the environment, then the config file.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return clierr.Wrap(clierr.ExitCodeConfig, "failed to load config", err).
			WithSuggestion("Fix or remove " + o.displayConfigPath())
	}
	if o.backend != "" {
		cfg.Storage.Backend = o.backend
	}
	if o.path != "" {
		cfg.Storage.Path = o.path
	}
	if err := config.Validate(cfg); err != nil {
		return clierr.Wrap(clierr.ExitCodeConfig, "invalid configuration", err).
			WithSuggestion("Valid backends: sqlite, file, memory")
	}

	level := cfg.LogLevel
	if env := os.Getenv(logLevelEnv); env != "" {
		level = env
	}
	if cmd.Flags().Changed("log-level") {
		level = o.logLevel
	}
	logger.SetLevel(level)

	o.cfg = cfg
	return nil
}

func (o *options) displayConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultConfigPath()
}
