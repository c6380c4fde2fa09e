package correction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"db-corrector/core/database"
	"db-corrector/core/reconcile"
	"db-corrector/core/report"
	"db-corrector/core/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrRunInProgress is returned when a run is requested while another one is active.
	ErrRunInProgress = errors.New("a reconciliation run is already in progress")
	// ErrRunsDisabled is returned when the server does not allow runs.
	ErrRunsDisabled = errors.New("reconciliation runs are disabled in this mode")
	// ErrStorageDisabled is returned by report lookups when storage is not configured.
	ErrStorageDisabled = errors.New("report storage is disabled")
)

// Options configures the correction service.
type Options struct {
	Reference database.Config
	Target    database.Config
	Tables    []reconcile.TableSpec
	Run       reconcile.Options
	// AllowRuns enables POST /correction/run.
	AllowRuns bool
	// Storage receives run reports. A nil client disables publishing.
	Storage      storage.Client
	Bucket       string
	ReportPrefix string
	// Connector overrides how databases are opened. Nil uses reconcile.DefaultConnector.
	Connector reconcile.Connector
}

// Service runs reconciliations and schema inspections for the HTTP handler.
type Service struct {
	opts   Options
	logger *zap.Logger
	runMu  sync.Mutex
}

// NewService creates a new correction service.
func NewService(opts Options, logger *zap.Logger) *Service {
	if opts.Connector == nil {
		opts.Connector = reconcile.DefaultConnector
	}
	return &Service{opts: opts, logger: logger}
}

// Tables returns the configured table specs in run order.
func (s *Service) Tables() []reconcile.TableSpec {
	return s.opts.Tables
}

// TableSchema compares one configured table across both databases.
type TableSchema struct {
	Table     string                `json:"table"`
	KeyColumn string                `json:"key_column"`
	Reference []database.ColumnInfo `json:"reference"`
	Target    []database.ColumnInfo `json:"target"`
	// KeyInReference and KeyInTarget report whether the key column exists on each side.
	KeyInReference bool `json:"key_in_reference"`
	KeyInTarget    bool `json:"key_in_target"`
	// MissingInTarget lists reference columns the target table lacks.
	MissingInTarget []string `json:"missing_in_target"`
	Error           string   `json:"error,omitempty"`
}

// Schema inspects every configured table on both databases.
func (s *Service) Schema(ctx context.Context) ([]TableSchema, error) {
	reference, err := s.opts.Connector(ctx, s.opts.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: reference database: %v", reconcile.ErrConnection, err)
	}
	defer database.Close(reference)

	target, err := s.opts.Connector(ctx, s.opts.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: target database: %v", reconcile.ErrConnection, err)
	}
	defer database.Close(target)

	reports := make([]TableSchema, 0, len(s.opts.Tables))
	for _, spec := range s.opts.Tables {
		reports = append(reports, compareTable(ctx, reference, target, spec))
	}
	return reports, nil
}

func compareTable(ctx context.Context, reference, target *gorm.DB, spec reconcile.TableSpec) TableSchema {
	ts := TableSchema{Table: spec.Table, KeyColumn: spec.KeyColumn, MissingInTarget: []string{}}

	var errs []string
	refCols, err := database.GetTableColumns(ctx, reference, spec.Table)
	if err != nil {
		errs = append(errs, "reference: "+err.Error())
	}
	targetCols, err := database.GetTableColumns(ctx, target, spec.Table)
	if err != nil {
		errs = append(errs, "target: "+err.Error())
	}
	if len(errs) > 0 {
		ts.Error = strings.Join(errs, "; ")
		return ts
	}

	ts.Reference = refCols
	ts.Target = targetCols
	_, ts.KeyInReference = database.FindColumn(refCols, spec.KeyColumn)
	_, ts.KeyInTarget = database.FindColumn(targetCols, spec.KeyColumn)
	for _, col := range refCols {
		if _, ok := database.FindColumn(targetCols, col.Field); !ok {
			ts.MissingInTarget = append(ts.MissingInTarget, col.Field)
		}
	}
	return ts
}

// Run reconciles every configured table and publishes the report when storage is enabled.
// Only one run may be active at a time.
func (s *Service) Run(ctx context.Context, dryRun bool, l *zap.Logger) (*report.Report, error) {
	if !s.opts.AllowRuns {
		return nil, ErrRunsDisabled
	}
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	opts := s.opts.Run
	opts.DryRun = opts.DryRun || dryRun

	runID := uuid.NewString()
	l = l.With(zap.String("run_id", runID), zap.Bool("dry_run", opts.DryRun))
	l.Info("Starting reconciliation run", zap.Int("tables", len(s.opts.Tables)))

	started := time.Now()
	r := reconcile.New(s.opts.Connector, reconcile.NewLogSink(l), opts)
	results, err := r.Run(ctx, s.opts.Reference, s.opts.Target, s.opts.Tables)
	if err != nil {
		l.Error("Reconciliation run aborted", zap.Error(err))
		return nil, err
	}

	rep := report.New(runID, started, opts.DryRun, results)
	l.Info("Reconciliation run finished",
		zap.Int("succeeded", rep.Summary.Succeeded),
		zap.Int("failed", rep.Summary.Failed),
		zap.Int("skipped", rep.Summary.Skipped))

	if s.opts.Storage != nil {
		name, err := report.Publish(ctx, s.opts.Storage, s.opts.Bucket, s.opts.ReportPrefix, rep)
		if err != nil {
			// Publishing is best effort; the run result is still returned.
			l.Warn("Failed to publish run report", zap.Error(err))
		} else {
			l.Info("Run report published", zap.String("object", name))
		}
	}
	return rep, nil
}

// Reports lists stored run ids, newest first.
func (s *Service) Reports(ctx context.Context) ([]string, error) {
	if s.opts.Storage == nil {
		return nil, ErrStorageDisabled
	}
	return report.List(ctx, s.opts.Storage, s.opts.Bucket, s.opts.ReportPrefix)
}

// Report returns the raw JSON report of a run.
func (s *Service) Report(ctx context.Context, runID string) ([]byte, error) {
	if s.opts.Storage == nil {
		return nil, ErrStorageDisabled
	}
	return report.Fetch(ctx, s.opts.Storage, s.opts.Bucket, s.opts.ReportPrefix, runID)
}
