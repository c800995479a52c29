// Package commands implements the exprc cobra command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/compiler"
	"github.com/Sumatoshi-tech/exprgraph/pkg/config"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
	"github.com/Sumatoshi-tech/exprgraph/pkg/version"
)

const binaryName = "exprc"

// Exit codes reported through ExitError.
const (
	exitCodeDifferences       = 1
	exitCodeValidationFailure = 2
)

// ExitError carries a process exit code. A nil Err means the command already
// reported the failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// globalOptions holds the persistent root flags.
type globalOptions struct {
	configPath string
	verbose    bool
	quiet      bool
}

// NewRootCommand builds the exprc command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   binaryName,
		Short: "Compile expression documents into animation expression strings",
		Long: `exprc compiles expression documents (YAML or JSON) into an expression
string plus the named reference and constant parameters an animation engine
binds at evaluation time.

Commands:
  compile    Compile one or more documents
  validate   Check a document against the document schema
  diff       Compare the compiled output of two documents
  functions  List the supported operators and functions
  mcp        Serve the compiler as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default is ./exprgraph.yaml or $HOME/.exprgraph/exprgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(newCompileCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newDiffCommand(opts))
	rootCmd.AddCommand(newFunctionsCommand(opts))
	rootCmd.AddCommand(newMCPCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String(binaryName))
		},
	}
}

// session bundles what a command needs after configuration is loaded.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	red       *observability.REDMetrics
	compiler  *compiler.Service
}

// sessionOptions adjusts observability for a particular command.
type sessionOptions struct {
	mode       observability.AppMode
	prometheus bool
	debug      bool
}

// openSession loads configuration, initializes observability and builds
// the compile service.
func openSession(cmd *cobra.Command, opts *globalOptions, sessOpts sessionOptions) (*session, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	applyColorMode(cfg.Output.Color)

	obsCfg, err := observabilityConfig(cmd, cfg, opts, sessOpts)
	if err != nil {
		return nil, err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, shutdownOnError(providers, err)
	}

	compileMetrics, err := observability.NewCompileMetrics(providers.Meter)
	if err != nil {
		return nil, shutdownOnError(providers, err)
	}

	cacheBytes, err := cfg.Compile.CacheBytes()
	if err != nil {
		return nil, shutdownOnError(providers, err)
	}

	svc := compiler.NewService(compiler.Options{
		CacheBytes:     cacheBytes,
		Workers:        cfg.Compile.Workers,
		Logger:         providers.Logger,
		Tracer:         providers.Tracer,
		Metrics:        red,
		CompileMetrics: compileMetrics,
	})

	err = observability.RegisterCacheMetrics(providers.Meter, svc.CacheSnapshot)
	if err != nil {
		return nil, shutdownOnError(providers, err)
	}

	return &session{cfg: cfg, providers: providers, red: red, compiler: svc}, nil
}

func observabilityConfig(
	cmd *cobra.Command, cfg *config.Config, opts *globalOptions, sessOpts sessionOptions,
) (observability.Config, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case opts.verbose || sessOpts.debug:
		level = slog.LevelDebug
	case opts.quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = cfg.Telemetry.ServiceName
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = sessOpts.mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.DebugTrace = sessOpts.debug
	obsCfg.Prometheus = sessOpts.prometheus
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON || sessOpts.mode == observability.ModeMCP
	obsCfg.LogOutput = cmd.ErrOrStderr()

	return obsCfg, nil
}

// close flushes telemetry; failures are logged, not returned.
func (s *session) close() {
	err := s.providers.Shutdown(context.Background())
	if err != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// withTimeout bounds one command run by the configured compile timeout.
func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Compile.Timeout)
}

func shutdownOnError(providers observability.Providers, err error) error {
	shutdownErr := providers.Shutdown(context.Background())
	if shutdownErr != nil {
		return fmt.Errorf("%w (shutdown: %w)", err, shutdownErr)
	}

	return err
}

// applyColorMode overrides terminal detection only when asked to.
func applyColorMode(mode string) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false //nolint:reassign // intentional override of library global
	case config.ColorNever:
		color.NoColor = true //nolint:reassign // intentional override of library global
	}
}

// outputFormat returns the flag value when set, else the configured format.
func outputFormat(flagValue string, cfg *config.Config) (string, error) {
	format := flagValue
	if format == "" {
		format = cfg.Output.Format
	}

	if format != config.FormatText && format != config.FormatJSON {
		return "", fmt.Errorf("%w: %q", config.ErrInvalidOutputFormat, format)
	}

	return format, nil
}
