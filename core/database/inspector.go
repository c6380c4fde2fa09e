package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a table as reported by the server.
type ColumnInfo struct {
	Field string `json:"field"`
	Type  string `json:"type"`
	// Key is "PRI" for primary key columns, empty otherwise.
	Key string `json:"key,omitempty"`
}

// GetTableColumns retrieves the column definitions for a given table in ordinal order.
// A table that does not exist yields an empty slice and no error.
func GetTableColumns(ctx context.Context, db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var columns []ColumnInfo
	if db.Dialector.Name() == DriverSQLite {
		type sqliteColumn struct {
			Name string
			Type string
			Pk   int
		}
		var sqliteCols []sqliteColumn
		err := db.WithContext(ctx).
			Raw("SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid", tableName).
			Scan(&sqliteCols).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			info := ColumnInfo{Field: col.Name, Type: strings.ToLower(col.Type)}
			if col.Pk > 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	// information_schema returns no rows for a missing table, where SHOW COLUMNS would fail.
	err := db.WithContext(ctx).
		Raw("SELECT COLUMN_NAME AS field, COLUMN_TYPE AS type, COLUMN_KEY AS `key` "+
			"FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? "+
			"ORDER BY ORDINAL_POSITION", tableName).
		Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

// FindColumn returns the column whose name matches name case-insensitively.
func FindColumn(columns []ColumnInfo, name string) (ColumnInfo, bool) {
	for _, col := range columns {
		if strings.EqualFold(col.Field, name) {
			return col, true
		}
	}
	return ColumnInfo{}, false
}
