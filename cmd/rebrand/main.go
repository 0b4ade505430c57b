package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rebrand/internal/config"
	"github.com/dgallion1/rebrand/internal/engine"
	"github.com/dgallion1/rebrand/internal/report"
)

var (
	flagConfig  string
	flagCorpus  string
	flagWorkers int
	flagVerbose bool

	flagAllowFlagged bool
)

func main() {
	root := &cobra.Command{
		Use:           "rebrand",
		Short:         "Context-aware terminology rewriter for a document corpus",
		Long:          "rebrand scans a corpus for a target token, classifies each occurrence's context,\napplies per-category rename policies, and produces a reviewable change set.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the YAML run configuration (required)")
	root.PersistentFlags().StringVar(&flagCorpus, "corpus", "", "corpus directory or file (overrides config)")
	root.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "parallel scan workers (overrides REBRAND_WORKERS)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Scan and classify, print the proposed change set without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(engine.Options{})
		},
	}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Write the change set back to the corpus, all-or-nothing per document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(engine.Options{Apply: true, AllowFlagged: flagAllowFlagged})
		},
	}
	applyCmd.Flags().BoolVar(&flagAllowFlagged, "allow-flagged", false, "exit zero even when flagged occurrences remain unconfirmed")

	root.AddCommand(planCmd, applyCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opts engine.Options) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flagConfig == "" {
		return fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagCorpus != "" {
		cfg.Corpus = flagCorpus
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := engine.Run(ctx, log, cfg, opts)
	if err != nil {
		return err
	}

	report.Render(os.Stdout, report.Report{
		Token:       cfg.Token,
		Replacement: cfg.Replacement,
		Apply:       opts.Apply,
		ChangeSet:   res.ChangeSet,
		Status:      res.Status,
		Notes:       res.Notes,
	})

	if code := res.ExitCode(opts); code != 0 {
		os.Exit(code)
	}
	return nil
}
