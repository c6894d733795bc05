package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dev-shimada/regscan/internal/config"
	"github.com/dev-shimada/regscan/internal/source"
	"github.com/dev-shimada/regscan/internal/view"
	"github.com/dev-shimada/regscan/internal/worker"
	"github.com/spf13/cobra"
)

// ErrLoadFailed is returned when at least one upload could not be loaded.
var ErrLoadFailed = errors.New("one or more uploads failed to load")

type options struct {
	envFile      string
	rows         int
	format       string
	parallel     int
	rate         int
	timeout      time.Duration
	maxBytes     int64
	anyExtension bool
	verbose      bool
}

// NewRootCmd builds the regscan command. Output goes to the command's out
// writer; logs go to stderr.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "regscan [flags] <location>...",
		Short: "Preview regulatory compliance CSV uploads.",
		Long: "Loads CSV files from local paths, s3://bucket/key or http(s) URLs, " +
			"parses them using the first line as the header row and prints a preview.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			setupLogger(cmd.ErrOrStderr(), cfg.LogLevel)

			format, err := view.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}

			fetcher := source.NewFetcher(cfg.SourceOptions())
			pool := worker.NewPool(fetcher, cfg.Parallel, cfg.Rate)
			sessions := pool.Run(cmd.Context(), args)

			if err := view.New(format, cfg.PreviewRows).RenderAll(cmd.OutOrStdout(), sessions); err != nil {
				return fmt.Errorf("failed to render preview: %w", err)
			}
			for _, s := range sessions {
				if s.Err != nil {
					return ErrLoadFailed
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.envFile, "env", "", "Path to a .env file (default .env if present)")
	flags.IntVarP(&opts.rows, "rows", "n", defaults.PreviewRows, "Number of rows to preview, 0 for all")
	flags.StringVarP(&opts.format, "format", "f", defaults.Format, "Output format: table, json or yaml")
	flags.IntVarP(&opts.parallel, "parallel", "p", defaults.Parallel, "Number of parallel loads")
	flags.IntVarP(&opts.rate, "rate", "r", defaults.Rate, "Rate limit in loads per second")
	flags.DurationVarP(&opts.timeout, "timeout", "t", defaults.Timeout, "Timeout for remote downloads")
	flags.Int64Var(&opts.maxBytes, "max-bytes", defaults.MaxBytes, "Maximum upload size in bytes, 0 for no limit")
	flags.BoolVar(&opts.anyExtension, "any-extension", false, "Accept files without a .csv extension")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

// resolveConfig layers explicitly set flags over the environment.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("rows") {
		cfg.PreviewRows = opts.rows
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("parallel") {
		cfg.Parallel = opts.parallel
	}
	if flags.Changed("rate") {
		cfg.Rate = opts.rate
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("max-bytes") {
		cfg.MaxBytes = opts.maxBytes
	}
	if flags.Changed("any-extension") {
		cfg.AnyExtension = opts.anyExtension
	}
	if opts.verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogger(w io.Writer, level slog.Level) {
	var programLevel = new(slog.LevelVar)
	programLevel.Set(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: programLevel})
	slog.SetDefault(slog.New(handler))
	// logをslog経由で出力
	log.SetOutput(slog.NewLogLogger(handler, slog.LevelInfo).Writer())
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
