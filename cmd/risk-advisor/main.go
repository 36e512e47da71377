package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opscart/k8s-risk-advisor/pkg/aiprovider"
	"github.com/opscart/k8s-risk-advisor/pkg/collector"
	"github.com/opscart/k8s-risk-advisor/pkg/config"
	"github.com/opscart/k8s-risk-advisor/pkg/engine"
	"github.com/opscart/k8s-risk-advisor/pkg/feedback"
	"github.com/opscart/k8s-risk-advisor/pkg/output"
	"github.com/opscart/k8s-risk-advisor/pkg/reporter"
	"github.com/opscart/k8s-risk-advisor/pkg/storage"
)

var (
	// Global flags
	configFile   string
	outputFormat string
	verbose      bool

	// Scan flags
	withAI       bool
	reportFormat string
	reportOutput string

	// Feedback flags
	accurate   bool
	inaccurate bool

	// Snooze flags
	snoozeFor time.Duration

	// Global config
	cfg   *config.Config
	store storage.Store
)

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func main() {
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "risk-advisor",
		Short: "Predictive failure detection for Kubernetes clusters",
		Long: `risk-advisor watches pod, node, GPU, and cluster telemetry across
one or more Kubernetes clusters, evaluates it against configurable
heuristics and optional AI analysis, and surfaces a ranked, capped
list of actionable recommendations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := cfg.LoadFile(configFile); err != nil {
					return err
				}
			}
			if outputFormat != "" {
				cfg.OutputFormat = outputFormat
			}
			if verbose {
				cfg.Verbose = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return openStore()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newFeedbackCmd())
	rootCmd.AddCommand(newActionCmd("accept", "Accept a recommendation and trigger its action"))
	rootCmd.AddCommand(newActionCmd("dismiss", "Dismiss a recommendation"))
	rootCmd.AddCommand(newSnoozeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func openStore() error {
	if cfg.StorageEnabled {
		logVerbose("Connecting to PostgreSQL")
		pgStore, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		store = pgStore
		return nil
	}
	store = storage.NewMemoryStore()
	return nil
}

func newEngine() (*engine.Engine, error) {
	source, err := collector.New(cfg.KubeContexts, cfg.PrometheusURL, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build collector: %w", err)
	}
	return engine.New(cfg, source, store), nil
}

func handler() output.Handler {
	if cfg.OutputFormat == "json" {
		return output.NewJSONHandler(os.Stdout)
	}
	return output.NewTextHandler(os.Stdout)
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one evaluation cycle and display recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if withAI && !cfg.AIEnabled {
				ids := cfg.AIProviders
				if len(ids) == 0 {
					ids = aiprovider.Detect()
				}
				logVerbose("AI analysis enabled with providers: %v", ids)
				cfg.AIEnabled = true
				cfg.AIProviders = ids
			}

			eng, err := newEngine()
			if err != nil {
				return err
			}
			if err := eng.Manager().Load(ctx); err != nil {
				return err
			}

			// First pass captures signals; with AI enabled, analyze and
			// re-rank before display.
			eng.RunCycle(ctx)
			if cfg.AIEnabled {
				eng.RunAICycle(ctx)
				eng.RunCycle(ctx)
			}

			recommendations := eng.GetPendingRecommendations()
			if err := handler().DisplayRecommendations(ctx, recommendations); err != nil {
				return err
			}

			if reportFormat != "" {
				return writeReport(ctx, eng)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withAI, "ai", false, "Include AI provider analysis in the scan")
	cmd.Flags().StringVar(&reportFormat, "report", "", "Also write a report (csv, html)")
	cmd.Flags().StringVar(&reportOutput, "report-output", "risk-report", "Report file name without extension")
	return cmd
}

func writeReport(ctx context.Context, eng *engine.Engine) error {
	stats, err := eng.GetStats(ctx)
	if err != nil {
		return err
	}

	rep := reporter.New(reporter.ReportFormat(reportFormat))
	report, err := rep.Generate(eng.GetPendingRecommendations(), stats)
	if err != nil {
		return err
	}

	path := reportOutput + "." + reportFormat
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch reporter.ReportFormat(reportFormat) {
	case reporter.FormatCSV:
		err = reporter.GenerateCSV(report, file)
	case reporter.FormatHTML:
		err = reporter.GenerateHTML(report, file)
	default:
		err = fmt.Errorf("unknown report format: %s", reportFormat)
	}
	if err != nil {
		return err
	}

	fmt.Printf("[INFO] Report written to %s\n", path)
	return nil
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the evaluation loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("[INFO] Watching %d cluster context(s), poll interval %s\n",
				max(len(cfg.KubeContexts), 1), cfg.PollInterval)
			if cfg.AIEnabled {
				fmt.Printf("[INFO] AI analysis every %s via %v\n", cfg.AIInterval(), cfg.AIProviders)
			}

			if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			fmt.Println("[INFO] Shutting down")
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show prediction accuracy statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tracker := feedback.New(store)
			stats, err := tracker.Stats(ctx)
			if err != nil {
				return err
			}
			return handler().DisplayStats(ctx, stats)
		},
	}
}

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <recommendation-id>",
		Short: "Record whether a recommendation was accurate",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tracker := feedback.New(store)

			if len(args) == 0 {
				return fmt.Errorf("recommendation id is required")
			}
			if accurate == inaccurate {
				return fmt.Errorf("exactly one of --accurate or --inaccurate is required")
			}

			// CLI feedback has no live engine to resolve the source;
			// persisted state carries it when storage is enabled.
			provider := "unknown"
			if recs, err := store.ListRecommendationStates(ctx); err == nil {
				for _, rec := range recs {
					if rec.ID == args[0] {
						provider = rec.Source
						break
					}
				}
			}

			if err := tracker.Record(ctx, args[0], provider, accurate); err != nil {
				return err
			}
			fmt.Println("[INFO] Feedback recorded")
			return nil
		},
	}

	cmd.Flags().BoolVar(&accurate, "accurate", false, "The prediction was accurate")
	cmd.Flags().BoolVar(&inaccurate, "inaccurate", false, "The prediction was inaccurate")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Bulk-clear the feedback log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := feedback.New(store).Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("[INFO] Feedback log cleared")
			return nil
		},
	})

	return cmd
}

func newActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <recommendation-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cfg.StorageEnabled {
				fmt.Println("[WARN] Storage is disabled; recommendation state will not survive this invocation")
			}
			eng, err := newEngine()
			if err != nil {
				return err
			}
			if err := eng.Manager().Load(ctx); err != nil {
				return err
			}

			switch action {
			case "accept":
				err = eng.Accept(ctx, args[0])
			case "dismiss":
				err = eng.Dismiss(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Printf("[INFO] Recommendation %s %sed\n", args[0], action)
			return nil
		},
	}
}

func newSnoozeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snooze <recommendation-id>",
		Short: "Snooze a recommendation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := newEngine()
			if err != nil {
				return err
			}
			if err := eng.Manager().Load(ctx); err != nil {
				return err
			}
			if err := eng.Snooze(ctx, args[0], snoozeFor); err != nil {
				return err
			}
			fmt.Printf("[INFO] Recommendation %s snoozed\n", args[0])
			return nil
		},
	}
	cmd.Flags().DurationVar(&snoozeFor, "for", 0, "Snooze duration (default from config)")
	return cmd
}
