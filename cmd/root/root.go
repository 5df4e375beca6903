// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/mpr-recon/internal/config"
	"fjacquet/mpr-recon/internal/container"
	"fjacquet/mpr-recon/internal/logging"

	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	CSVDelimiter string
	Encoding     string
}

var (
	// Log is the shared logger instance for commands. It is replaced by the
	// configured logger once the container is built.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppContainer holds the wired dependencies for the running command.
	AppContainer *container.Container

	// Flags holds the persistent flag values.
	Flags = GlobalFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "mpr-recon",
		Short: "Reconcile payment gateway MPR reports against internal and bank records.",
		Long: `mpr-recon reconciles a payment gateway's Merchant Payment Report (MPR)
against internal transaction records and, optionally, a bank statement.
It maps arbitrary column layouts onto canonical fields, classifies every
transaction and reports anomalies and settlement totals.`,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				_ = AppContainer.Close()
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	pf := Cmd.PersistentFlags()
	pf.StringVar(&Flags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.mpr-recon, .mpr-recon or .)")
	pf.StringVar(&Flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&Flags.LogFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&Flags.CSVDelimiter, "csv-delimiter", "", "Delimiter for CSV input and output")
	pf.StringVar(&Flags.Encoding, "encoding", "", "Character encoding of CSV inputs (utf-8, windows-1252, iso-8859-1)")
}

func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	AppContainer = c
	Log = c.GetLogger()
	return nil
}

// LoadConfig loads the configuration and applies persistent flag overrides.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if Flags.ConfigFile != "" {
		cfg, err = config.InitializeConfigFromFile(Flags.ConfigFile)
	} else {
		cfg, err = config.InitializeConfig()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = Flags.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = Flags.LogFormat
	}
	if flags.Changed("csv-delimiter") {
		cfg.CSV.Delimiter = Flags.CSVDelimiter
	}
	if flags.Changed("encoding") {
		cfg.Input.Encoding = Flags.Encoding
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GetContainer returns the application container, or an error when the
// command ran without the root pre-run hook.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container is not initialized")
	}
	return AppContainer, nil
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	if AppContainer != nil {
		return AppContainer.GetLogger()
	}
	return Log
}
