package reconcile

import (
	"encoding/json"
	"time"

	"db-corrector/core/database"
)

// TableSpec names a table and the column that identifies its rows.
type TableSpec struct {
	// Table is the table name, identical in both databases.
	Table string `json:"table" yaml:"table"`
	// KeyColumn uniquely identifies a row for comparison purposes.
	KeyColumn string `json:"key_column" yaml:"key_column"`
}

// Table is a handle on a table: its name and its known columns.
type Table struct {
	Name    string
	Columns []database.ColumnInfo
}

// ColumnNames returns the column names in ordinal order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Field
	}
	return names
}

// ActionKind tags an Action.
type ActionKind string

const (
	// ActionInsert adds a row that exists only in the reference.
	ActionInsert ActionKind = "insert"
	// ActionUpdate overwrites a target row that differs from the reference.
	ActionUpdate ActionKind = "update"
)

// Action is one mutation required on the target table.
type Action struct {
	// Kind selects between insert and update.
	Kind ActionKind `json:"kind"`
	// Key is the key column value of the affected row.
	Key Value `json:"key"`
	// Row is the full reference row to write.
	Row Row `json:"row"`
}

// InsertAction returns an action inserting row.
func InsertAction(key Value, row Row) Action {
	return Action{Kind: ActionInsert, Key: key, Row: row}
}

// UpdateAction returns an action overwriting the target row at key with row.
func UpdateAction(key Value, row Row) Action {
	return Action{Kind: ActionUpdate, Key: key, Row: row}
}

// TableResult is the outcome of reconciling one table.
type TableResult struct {
	Table     string `json:"table"`
	KeyColumn string `json:"key_column"`

	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	// TargetOnly counts target rows without a reference counterpart; they are left untouched.
	TargetOnly int `json:"target_only"`

	// DryRun is set when the actions were planned but rolled back.
	DryRun bool `json:"dry_run"`
	// Actions holds the planned actions of a dry run.
	Actions []Action `json:"actions,omitempty"`

	Duration time.Duration `json:"duration"`
	// Err is nil on success. A failed table never keeps partially applied writes.
	Err error `json:"-"`
}

// OK reports whether the table reconciled without error.
func (r TableResult) OK() bool { return r.Err == nil }

// MarshalJSON adds the error text to the encoded result.
func (r TableResult) MarshalJSON() ([]byte, error) {
	type alias TableResult
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Options controls a reconciliation run.
type Options struct {
	// FailFast stops at the first failed table; the remaining tables are reported as skipped.
	FailFast bool
	// DryRun plans every table and rolls back instead of committing.
	DryRun bool
	// Parallelism is the number of tables reconciled at once. Values below 2 run sequentially.
	Parallelism int
}

// Config holds configuration for reconciliation runs.
type Config struct {
	// Tables is an ordered list of table=key_column pairs separated by commas.
	Tables string `mapstructure:"tables" default:""`
	// TablesFile is a YAML file mapping table names to key columns, in order.
	TablesFile string `mapstructure:"tables_file" default:"tables.yaml"`
	// FailFast stops a run at the first failed table.
	FailFast bool `mapstructure:"fail_fast" default:"false"`
	// DryRun computes actions without committing them.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// Parallelism is the number of tables reconciled concurrently.
	Parallelism int `mapstructure:"parallelism" default:"1"`
}

// Options converts the configuration into run options.
func (c Config) Options() Options {
	return Options{FailFast: c.FailFast, DryRun: c.DryRun, Parallelism: c.Parallelism}
}
