package reconcile

import (
	"context"
	"fmt"
	"sync"

	"db-corrector/core/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Connector opens a connection pool for a database configuration.
type Connector func(ctx context.Context, cfg database.Config) (*gorm.DB, error)

// DefaultConnector opens connections with database.Connect.
func DefaultConnector(_ context.Context, cfg database.Config) (*gorm.DB, error) {
	return database.Connect(cfg)
}

// Reconciler reconciles a target database against a reference, one table spec at a time.
type Reconciler struct {
	connect Connector
	sink    Sink
	opts    Options
}

// New creates a Reconciler. A nil connector uses DefaultConnector, a nil sink discards events.
func New(connect Connector, sink Sink, opts Options) *Reconciler {
	if connect == nil {
		connect = DefaultConnector
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Reconciler{connect: connect, sink: sink, opts: opts}
}

// Run opens both databases, reconciles every table in specs and closes both databases.
//
// Each connection that was opened is closed exactly once, on every return path.
// A connection failure is fatal for the whole run and returned as an ErrConnection error;
// table failures are reported in the results instead.
func (r *Reconciler) Run(ctx context.Context, referenceCfg, targetCfg database.Config, specs []TableSpec) ([]TableResult, error) {
	reference, err := r.open(ctx, RoleReference, referenceCfg)
	if err != nil {
		return nil, err
	}
	defer r.close(RoleReference, referenceCfg, reference)

	target, err := r.open(ctx, RoleTarget, targetCfg)
	if err != nil {
		return nil, err
	}
	defer r.close(RoleTarget, targetCfg, target)

	return r.ReconcileAll(ctx, reference, target, specs), nil
}

// ReconcileAll reconciles every table in specs over already open connections.
// Results are returned in spec order. Connections are not closed.
func (r *Reconciler) ReconcileAll(ctx context.Context, reference, target *gorm.DB, specs []TableSpec) []TableResult {
	tables := NewTableReconciler(r.sink, r.opts.DryRun)
	results := make([]TableResult, len(specs))

	if r.opts.Parallelism > 1 {
		r.reconcileConcurrently(ctx, tables, reference, target, specs, results)
		return results
	}

	for i, spec := range specs {
		if r.opts.FailFast && i > 0 && !results[i-1].OK() {
			markSkipped(specs[i:], results[i:])
			break
		}
		if err := ctx.Err(); err != nil {
			results[i] = TableResult{Table: spec.Table, KeyColumn: spec.KeyColumn, Err: tableError(spec.Table, err)}
			continue
		}
		results[i] = tables.Reconcile(ctx, reference, target, spec)
	}
	return results
}

// reconcileConcurrently runs up to Parallelism tables at once. Tables never share a
// transaction, so a failure in one cannot affect another; with FailFast the first
// failure stops tables that have not started yet.
func (r *Reconciler) reconcileConcurrently(ctx context.Context, tables *TableReconciler, reference, target *gorm.DB, specs []TableSpec, results []TableResult) {
	var (
		mu     sync.Mutex
		failed bool
	)
	g := new(errgroup.Group)
	g.SetLimit(r.opts.Parallelism)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			mu.Lock()
			skip := r.opts.FailFast && failed
			mu.Unlock()
			if skip {
				markSkipped(specs[i:i+1], results[i:i+1])
				return nil
			}

			res := tables.Reconcile(ctx, reference, target, spec)
			results[i] = res
			if !res.OK() {
				mu.Lock()
				failed = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
}

func markSkipped(specs []TableSpec, results []TableResult) {
	for i, spec := range specs {
		results[i] = TableResult{
			Table:     spec.Table,
			KeyColumn: spec.KeyColumn,
			Err:       tableError(spec.Table, ErrSkipped),
		}
	}
}

func (r *Reconciler) open(ctx context.Context, role string, cfg database.Config) (*gorm.DB, error) {
	db, err := r.connect(ctx, cfg)
	if err != nil {
		r.sink.Connection(ConnectionEvent{Role: role, Label: cfg.Label(), State: ConnectionFailed, Err: err})
		return nil, fmt.Errorf("%w: %s database: %v", ErrConnection, role, err)
	}
	r.sink.Connection(ConnectionEvent{Role: role, Label: cfg.Label(), State: ConnectionOpened})
	return db, nil
}

func (r *Reconciler) close(role string, cfg database.Config, db *gorm.DB) {
	err := database.Close(db)
	r.sink.Connection(ConnectionEvent{Role: role, Label: cfg.Label(), State: ConnectionClosed, Err: err})
}
