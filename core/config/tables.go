package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"db-corrector/core/reconcile"

	"github.com/goccy/go-yaml"
)

// tablesFile is the layout of the tables file:
//
//	tables:
//	  users: id
//	  orders: order_id
type tablesFile struct {
	Tables yaml.MapSlice `yaml:"tables"`
}

// TableSpecs resolves the ordered table list. An inline reconcile.tables value wins over
// the tables file; a relative tables file is resolved against dir.
func (c *Config) TableSpecs(dir string) ([]reconcile.TableSpec, error) {
	if strings.TrimSpace(c.Reconcile.Tables) != "" {
		return ParseTables(c.Reconcile.Tables)
	}
	if c.Reconcile.TablesFile == "" {
		return nil, fmt.Errorf("no tables configured: set reconcile.tables or reconcile.tables_file")
	}
	path := c.Reconcile.TablesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return LoadTables(path)
}

// LoadTables reads an ordered table to key column mapping from a YAML file.
func LoadTables(path string) ([]reconcile.TableSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}

	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tables file %s: %w", path, err)
	}

	specs := make([]reconcile.TableSpec, 0, len(file.Tables))
	for _, item := range file.Tables {
		table, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("tables file %s: table name %v is not a string", path, item.Key)
		}
		key, ok := item.Value.(string)
		if !ok {
			return nil, fmt.Errorf("tables file %s: key column of %s must be a string", path, table)
		}
		specs = append(specs, reconcile.TableSpec{Table: table, KeyColumn: key})
	}
	return validateTables(specs)
}

// ParseTables parses "users=id,orders=order_id" into table specs, keeping the order.
func ParseTables(s string) ([]reconcile.TableSpec, error) {
	var specs []reconcile.TableSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		table, key, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid table entry %q: expected table=key_column", part)
		}
		specs = append(specs, reconcile.TableSpec{
			Table:     strings.TrimSpace(table),
			KeyColumn: strings.TrimSpace(key),
		})
	}
	return validateTables(specs)
}

func validateTables(specs []reconcile.TableSpec) ([]reconcile.TableSpec, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no tables configured")
	}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Table == "" || spec.KeyColumn == "" {
			return nil, fmt.Errorf("table %q needs both a name and a key column", spec.Table)
		}
		if _, dup := seen[spec.Table]; dup {
			return nil, fmt.Errorf("table %s is configured twice", spec.Table)
		}
		seen[spec.Table] = struct{}{}
	}
	return specs, nil
}
