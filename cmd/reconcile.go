package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"db-corrector/core/config"
	"db-corrector/core/logger"
	"db-corrector/core/reconcile"
	"db-corrector/core/report"
	"db-corrector/core/storage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tableFlags       []string
	dryRunFlag       bool
	failFastFlag     bool
	parallelismFlag  int
	reportOutputFlag string
)

// reconcileCmd runs a reconciliation of every configured table.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the target database against the reference database",
	Long: `Reconcile compares every configured table of the target database with the
reference database. Missing rows are inserted and differing rows are updated.
Each table is applied in its own transaction; a failed table is rolled back and
the run continues with the next one unless --fail-fast is set.

Examples:
  # Reconcile the tables from tables.yaml
  reconcile

  # Preview the actions without committing
  reconcile --dry-run

  # Reconcile explicit tables, in order
  reconcile --table users=id --table orders=order_id

  # Write the JSON report to a file
  reconcile --report report.json`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringArrayVar(&tableFlags, "table", nil, "Table to reconcile as table=key_column (repeatable, overrides configuration)")
	reconcileCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Compute actions without committing them")
	reconcileCmd.Flags().BoolVar(&failFastFlag, "fail-fast", false, "Stop at the first failed table")
	reconcileCmd.Flags().IntVar(&parallelismFlag, "parallelism", 1, "Number of tables reconciled concurrently")
	reconcileCmd.Flags().StringVar(&reportOutputFlag, "report", "", "Write the JSON report to this file (- for stdout)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	specs, err := resolveTables(cfg, tableFlags)
	if err != nil {
		return err
	}

	opts := cfg.Reconcile.Options()
	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		opts.DryRun = dryRunFlag
	}
	if flags.Changed("fail-fast") {
		opts.FailFast = failFastFlag
	}
	if flags.Changed("parallelism") {
		opts.Parallelism = parallelismFlag
	}

	var client storage.Client
	if cfg.Storage.Enabled {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
	}

	var out io.Writer
	switch reportOutputFlag {
	case "":
	case "-":
		out = os.Stdout
	default:
		f, err := os.Create(reportOutputFlag)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	rep, err := executeReconcile(ctx, cfg, specs, opts, reconcile.DefaultConnector, client, out, l)
	if err != nil {
		return err
	}
	if rep.HasFailures() {
		return fmt.Errorf("reconciliation incomplete: %d failed, %d skipped of %d tables",
			rep.Summary.Failed, rep.Summary.Skipped, rep.Summary.Tables)
	}
	return nil
}

// resolveTables returns the --table flags when given, otherwise the configured tables.
func resolveTables(cfg *config.Config, flags []string) ([]reconcile.TableSpec, error) {
	if len(flags) > 0 {
		return config.ParseTables(strings.Join(flags, ","))
	}
	return cfg.TableSpecs(configDir)
}

// executeReconcile runs the reconciliation, writes the report to out and publishes it.
func executeReconcile(
	ctx context.Context,
	cfg *config.Config,
	specs []reconcile.TableSpec,
	opts reconcile.Options,
	connect reconcile.Connector,
	client storage.Client,
	out io.Writer,
	l *zap.Logger,
) (*report.Report, error) {
	runID := uuid.NewString()
	l = l.With(zap.String("run_id", runID))
	l.Info("Starting reconciliation",
		zap.String("reference", cfg.Reference.Label()),
		zap.String("target", cfg.Target.Label()),
		zap.Int("tables", len(specs)),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("fail_fast", opts.FailFast),
		zap.Int("parallelism", opts.Parallelism),
	)

	started := time.Now()
	r := reconcile.New(connect, reconcile.NewLogSink(l), opts)
	results, err := r.Run(ctx, cfg.Reference, cfg.Target, specs)
	if err != nil {
		return nil, err
	}

	rep := report.New(runID, started, opts.DryRun, results)
	printReconcileReport(l, rep)

	if out != nil {
		if err := rep.Write(out); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
	}

	if client != nil {
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			l.Warn("Failed to prepare report bucket", zap.Error(err))
		} else if name, err := report.Publish(ctx, client, cfg.Storage.Bucket, cfg.Storage.ReportPrefix, rep); err != nil {
			l.Warn("Failed to publish run report", zap.Error(err))
		} else {
			l.Info("Run report published", zap.String("object", name))
		}
	}

	return rep, nil
}

// printReconcileReport logs the run summary and the error of every failed table.
func printReconcileReport(l *zap.Logger, rep *report.Report) {
	s := rep.Summary

	l.Info("Reconciliation report",
		zap.Int("tables", s.Tables),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Int("skipped", s.Skipped),
		zap.Int("inserted", s.Inserted),
		zap.Int("updated", s.Updated),
		zap.Int("unchanged", s.Unchanged),
	)

	for _, t := range rep.Tables {
		if t.Status == report.StatusOK {
			continue
		}
		l.Warn("Table not reconciled",
			zap.String("table", t.Table),
			zap.String("status", t.Status),
			zap.Error(t.Err),
		)
	}

	if rep.DryRun {
		l.Info("Dry-run mode: No changes were made.")
	}
}
