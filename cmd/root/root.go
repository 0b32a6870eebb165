// Package root contains the root command for the application
package root

import (
	"fmt"

	"radiologi/xa-dose/internal/config"
	"radiologi/xa-dose/internal/container"
	"radiologi/xa-dose/internal/logging"
	"radiologi/xa-dose/internal/validation"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Table      string
	Version    string
	RulesDir   string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// AppContainer holds the wired dependencies once PersistentPreRunE has run
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "xa-dose",
		Short: "Classify interventional radiology procedures for dose statistics.",
		Long: `xa-dose maps free-text procedure descriptions from interventional dose exports
to canonical procedure categories using ordered inclusion/exclusion rule tables,
so that DAP statistics can be aggregated per category and per room.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if AppContainer == nil {
				return nil
			}
			return AppContainer.Close()
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches $HOME/.xa-dose, ./.xa-dose and . for config.yaml)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&SharedFlags.Table, "table", "", "Rule table name (default from rules.table)")
	flags.StringVar(&SharedFlags.Version, "version", "", "Rule table version (default: highest available)")
	flags.StringVar(&SharedFlags.RulesDir, "rules-dir", "", "Directory of additional rule table YAML files")
}

// LoadConfig reads the configuration and applies command-line overrides.
func LoadConfig(flags CommonFlags) (*config.Config, error) {
	cfg, err := config.InitializeConfig(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Table != "" {
		cfg.Rules.Table = flags.Table
		cfg.Rules.Version = flags.Version
	} else if flags.Version != "" {
		cfg.Rules.Version = flags.Version
	}
	if flags.RulesDir != "" {
		cfg.Rules.Directory = flags.RulesDir
	}
	return cfg, nil
}

// Setup loads configuration and wires the application container.
func Setup() error {
	cfg, err := LoadConfig(SharedFlags)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if cfg.Rules.Directory != "" {
		if err := validation.IsValidDirectory(cfg.Rules.Directory); err != nil {
			return fmt.Errorf("invalid rules directory: %w", err)
		}
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	AppContainer = c
	Log = c.GetLogger()
	return nil
}
