// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either a MySQL or a SQLite connection pool from a Config.
// The corrector opens two of them per run: the reference database and the target database.
//
// # Connect
//
// Connect selects the dialector from Config.Driver, applies pool settings suited to the
// driver and pings the server before returning. Close releases the pool.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns in ordinal order. The reconcile engine uses it
// to build table handles and to validate that the configured key column exists.
//
// # Usage
//
//	db, err := database.Connect(cfg.Reference)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	columns, err := database.GetTableColumns(ctx, db, "users")
package database
