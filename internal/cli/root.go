package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/skuquery/internal/config"
	"github.com/roach88/skuquery/internal/engine"
	"github.com/roach88/skuquery/internal/logger"
)

// RootOptions holds global flags and the state every command shares.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Populated by PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the skuquery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "skuquery",
		Short: "Filter, sort and paginate product catalog snapshots",
		Long: `skuquery evaluates declarative queries against an immutable snapshot of
attributed product records and manages saved queries.

Configuration is read from --config (YAML) and SKUQUERY_* environment
variables. Command flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSavedCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates global flags, loads configuration and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if o.Verbose {
		logCfg.Level = "DEBUG"
	}
	o.Logger = logger.New(logCfg, cmd.ErrOrStderr())
	return nil
}

// settings returns the loaded configuration, or defaults when a command runs
// without the root pre-run (as in unit tests).
func (o *RootOptions) settings() *config.Config {
	if o.Config == nil {
		o.Config = config.DefaultConfig()
	}
	return o.Config
}

func (o *RootOptions) log() *slog.Logger {
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newEngine builds an engine from configuration plus any extra options.
func (o *RootOptions) newEngine(extra ...engine.Option) *engine.Engine {
	cfg := o.settings()
	opts := []engine.Option{
		engine.WithLogger(o.log()),
		engine.WithMaxLimit(cfg.MaxLimit),
		engine.WithParallelism(cfg.Parallelism),
		engine.WithChunkSize(cfg.ChunkSize),
	}
	return engine.New(append(opts, extra...)...)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
