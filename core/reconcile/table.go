package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errDryRun forces the rollback of a dry-run transaction.
var errDryRun = errors.New("dry run")

// TableReconciler reconciles single tables against a reference.
type TableReconciler struct {
	sink   Sink
	dryRun bool
}

// NewTableReconciler returns a reconciler reporting to sink. A nil sink discards events.
func NewTableReconciler(sink Sink, dryRun bool) *TableReconciler {
	if sink == nil {
		sink = NopSink{}
	}
	return &TableReconciler{sink: sink, dryRun: dryRun}
}

// Reconcile converges one target table toward the reference.
//
// The target snapshot is read, diffed and written inside a single transaction on target:
// either every action is committed or the transaction is rolled back and the result
// carries a *ReconciliationError.
func (t *TableReconciler) Reconcile(ctx context.Context, reference, target *gorm.DB, spec TableSpec) TableResult {
	start := time.Now()
	result := TableResult{Table: spec.Table, KeyColumn: spec.KeyColumn, DryRun: t.dryRun}

	err := t.reconcile(ctx, reference, target, spec, &result)
	result.Duration = time.Since(start)
	if err != nil {
		// Counts describe committed work only.
		result.Inserted, result.Updated, result.Unchanged, result.TargetOnly = 0, 0, 0, 0
		result.Actions = nil
		result.Err = tableError(spec.Table, err)
	}

	t.sink.TableDone(TableEvent{Result: result})
	return result
}

func (t *TableReconciler) reconcile(ctx context.Context, reference, target *gorm.DB, spec TableSpec, result *TableResult) error {
	if target == nil {
		return fmt.Errorf("%w: target connection is nil", ErrConnection)
	}

	refTable, err := InspectTable(ctx, reference, spec.Table)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	refRows, err := LoadSnapshot(ctx, reference, refTable, spec.KeyColumn)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}

	var applied []ActionEvent
	err = target.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targetTable, err := InspectTable(ctx, tx, spec.Table)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		targetRows, err := LoadSnapshot(ctx, tx, targetTable, spec.KeyColumn)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}

		actions := Diff(refRows, targetRows)
		result.TargetOnly = countTargetOnly(refRows, targetRows)
		result.Unchanged = refRows.Len() - len(actions)

		for _, action := range actions {
			if !t.dryRun {
				if err := applyAction(tx, spec.Table, targetRows.KeyColumn(), action); err != nil {
					return err
				}
			}
			switch action.Kind {
			case ActionInsert:
				result.Inserted++
			case ActionUpdate:
				result.Updated++
			}
			applied = append(applied, ActionEvent{
				Table:  spec.Table,
				Kind:   action.Kind,
				Key:    action.Key,
				Row:    action.Row,
				DryRun: t.dryRun,
			})
		}

		if t.dryRun {
			result.Actions = actions
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return err
	}

	// Events describe committed state, so they are emitted after the commit.
	for _, e := range applied {
		t.sink.Action(e)
	}
	return nil
}

// applyAction executes one action as an INSERT or a keyed UPDATE within tx.
func applyAction(tx *gorm.DB, table, keyColumn string, action Action) error {
	switch action.Kind {
	case ActionInsert:
		if err := tx.Table(table).Create(action.Row.Map()).Error; err != nil {
			return fmt.Errorf("%w: insert %s into %s: %v", ErrWrite, action.Key, table, err)
		}
	case ActionUpdate:
		res := tx.Table(table).
			Where(clause.Eq{Column: clause.Column{Name: keyColumn}, Value: action.Key.Interface()}).
			Updates(action.Row.Map())
		if res.Error != nil {
			return fmt.Errorf("%w: update %s in %s: %v", ErrWrite, action.Key, table, res.Error)
		}
	default:
		return fmt.Errorf("%w: unknown action kind %q", ErrWrite, action.Kind)
	}
	return nil
}
