package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strings-sorter/internal/config"
	"strings-sorter/internal/filewalker"
	"strings-sorter/internal/localize"
	"strings-sorter/internal/report"
	"strings-sorter/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X strings-sorter/internal/cli.Version=...".
var Version = "dev"

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd(viper.New(), os.Stdout).Execute(); err != nil {
		log.Error().Err(err).Msg("strings-sorter failed")
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	config.SetDefaults(v)

	rootCmd := &cobra.Command{
		Use:           "strings-sorter",
		Short:         "Sort and validate localization .strings files",
		Long:          "Parses \"key\" = \"value\"; localization files, reports every malformed line, and rewrites each file sorted by key.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON instead of console text")
	_ = v.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag(config.KeyJSONLogs, rootCmd.PersistentFlags().Lookup("json-logs"))

	rootCmd.AddCommand(sortCmd(v))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func sortCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort [paths...]",
		Short: "Normalize .strings files in place",
		Long: `Sorts every entry of each file by key and rewrites the file atomically.
Directories are searched recursively. Every malformed line is reported as
<path>:<line>: error: <message>; a file with any problem is left untouched
and the command exits non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			setupLogging(cfg)

			if len(args) == 0 {
				args = []string{"."}
			}

			ctx, cancel := setupContext(cmd.Context())
			defer cancel()

			return runSort(ctx, cfg, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntP("workers", "w", 4, "Number of files processed concurrently")
	cmd.Flags().String("duplicates", string(localize.DuplicatesPreserve), "Duplicate key policy: preserve or reject")
	cmd.Flags().StringSlice("ext", []string{".strings"}, "File extensions searched for in directories")
	cmd.Flags().Bool("fail-fast", false, "Stop starting new files after the first failure")
	cmd.Flags().Bool("check", false, "Report files that are not sorted without rewriting them")
	cmd.Flags().String("database-url", "", "PostgreSQL URL to record run outcomes (disabled when empty)")

	_ = v.BindPFlag(config.KeyWorkers, cmd.Flags().Lookup("workers"))
	_ = v.BindPFlag(config.KeyDuplicates, cmd.Flags().Lookup("duplicates"))
	_ = v.BindPFlag(config.KeyExtensions, cmd.Flags().Lookup("ext"))
	_ = v.BindPFlag(config.KeyFailFast, cmd.Flags().Lookup("fail-fast"))
	_ = v.BindPFlag(config.KeyCheck, cmd.Flags().Lookup("check"))
	_ = v.BindPFlag(config.KeyDatabaseURL, cmd.Flags().Lookup("database-url"))

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.JSONLogs {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// setupContext creates a cancellable context with signal handling.
func setupContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, finishing files in progress...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// runSort handles the `sort` command.
func runSort(ctx context.Context, cfg *config.Config, roots []string, out io.Writer) error {
	w := filewalker.NewWalker(cfg.Extensions)
	paths, err := w.Walk(roots...)
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}
	if len(paths) == 0 {
		log.Warn().Strs("roots", roots).Strs("extensions", cfg.Extensions).Msg("No localization files found")
		return nil
	}

	reporters := report.Multi{report.NewConsole(out)}
	if cfg.DatabaseURL != "" {
		pgPool, err := report.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pgPool.Close()

		store := report.NewStore(pgPool)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		reporters = append(reporters, store)
	}

	// Outcomes are still reported after a fail-fast or signal cancellation.
	reportCtx := context.WithoutCancel(ctx)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := localize.Options{Duplicates: cfg.Duplicates, DryRun: cfg.Check}

	log.Info().
		Int("files", len(paths)).
		Int("workers", cfg.WorkerCount).
		Str("duplicates", string(cfg.Duplicates)).
		Bool("check", cfg.Check).
		Msg("Starting normalization")

	filePool := worker.NewPool[string, report.Outcome](cfg.WorkerCount,
		func(_ context.Context, path string) (report.Outcome, error) {
			start := time.Now()
			f, err := localize.Process(path, opts)
			o := report.NewOutcome(path, f, err, cfg.Check, time.Since(start))

			if err := reporters.Report(reportCtx, o); err != nil {
				log.Warn().Err(err).Str("file", path).Msg("Failed to report outcome")
			}
			if o.Failed() && cfg.FailFast {
				cancel()
			}
			return o, nil
		},
	)
	tasks := filePool.Execute(runCtx, paths)

	var summary report.Summary
	for _, task := range tasks {
		o := task.Result
		if task.Skipped {
			o = report.NewOutcome(task.Input, nil, task.Err, cfg.Check, 0)
			if err := reporters.Report(reportCtx, o); err != nil {
				log.Warn().Err(err).Str("file", task.Input).Msg("Failed to report outcome")
			}
		}
		summary.Add(o)
	}
	summary.Log()

	if summary.Failed > 0 {
		if cfg.Check {
			return fmt.Errorf("%d of %d files failed the check", summary.Failed, summary.Processed)
		}
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Processed)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}
