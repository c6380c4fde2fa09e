// Package reconcile converges a target relational database toward a reference database.
//
// For every configured table the reference rows are the source of truth: rows missing
// from the target are inserted, rows that differ are overwritten, and rows that only exist
// in the target are left untouched. Nothing is ever deleted and schemas are never migrated.
//
// # Architecture
//
// The engine is built from four layers, leaf first:
//
// 1. Snapshot reader: LoadSnapshot reads a whole table and indexes its rows by the key
// column into a KeyedRowSet. Duplicate keys fail with ErrDuplicateKey, a missing key
// column with ErrSchema.
//
// 2. Differ: Diff is a pure function from two KeyedRowSets to an ordered list of Actions
// (Insert or Update), in ascending key order. Running it against a converged target
// yields no actions.
//
// 3. Table reconciler: reads the reference, then reads, diffs and writes the target table
// inside one transaction. Either all of a table's actions are committed or none are.
//
// 4. Reconciler: opens both databases, walks the ordered table specs and closes both
// databases on every exit path. One failed table does not stop the others unless
// Options.FailFast is set.
//
// # Rows and values
//
// A Row is an ordered mapping from column name to a tagged scalar Value
// (null, bool, int, float, string, bytes, time). Two rows are equal when they hold the same
// columns with equal values.
//
// # Observability
//
// Events (connection lifecycle, applied actions, table outcomes) go to the Sink passed at
// construction. LogSink writes them through zap.
//
// # Usage
//
//	r := reconcile.New(nil, reconcile.NewLogSink(log), reconcile.Options{})
//	results, err := r.Run(ctx, cfg.Reference, cfg.Target, []reconcile.TableSpec{
//	    {Table: "users", KeyColumn: "id"},
//	    {Table: "orders", KeyColumn: "order_id"},
//	})
package reconcile
