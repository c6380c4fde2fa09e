package reconcile

import (
	"context"
	"fmt"

	"db-corrector/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InspectTable builds the handle of a table from the server's schema.
func InspectTable(ctx context.Context, db *gorm.DB, name string) (Table, error) {
	if db == nil {
		return Table{}, fmt.Errorf("%w: database connection is nil", ErrConnection)
	}
	columns, err := database.GetTableColumns(ctx, db, name)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if len(columns) == 0 {
		return Table{}, fmt.Errorf("%w: table %s not found", ErrSchema, name)
	}
	return Table{Name: name, Columns: columns}, nil
}

// LoadSnapshot reads every row of table and indexes them by keyColumn.
// The key column is matched case-insensitively against the table's columns.
func LoadSnapshot(ctx context.Context, db *gorm.DB, table Table, keyColumn string) (*KeyedRowSet, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database connection is nil", ErrConnection)
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: table %s has no known columns", ErrSchema, table.Name)
	}
	keyCol, ok := database.FindColumn(table.Columns, keyColumn)
	if !ok {
		return nil, fmt.Errorf("%w: key column %s does not exist on table %s", ErrSchema, keyColumn, table.Name)
	}

	selected := make([]clause.Column, len(table.Columns))
	for i, c := range table.Columns {
		selected[i] = clause.Column{Name: c.Field}
	}

	rows, err := db.WithContext(ctx).
		Table(table.Name).
		Clauses(clause.Select{Columns: selected}).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read table %s: %v", ErrConnection, table.Name, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		dbTypes[i] = ct.DatabaseTypeName()
	}

	set := NewKeyedRowSet(keyCol.Field)
	raw := make([]any, len(names))
	dest := make([]any, len(names))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: failed to scan %s: %v", ErrConnection, table.Name, err)
		}
		var row Row
		for i, name := range names {
			v, err := FromDriver(raw[i], dbTypes[i])
			if err != nil {
				return nil, fmt.Errorf("%w: column %s.%s: %v", ErrSchema, table.Name, name, err)
			}
			row.Set(name, v)
		}
		if err := set.Add(row); err != nil {
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read table %s: %v", ErrConnection, table.Name, err)
	}

	return set, nil
}
