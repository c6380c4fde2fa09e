package reconcile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Row is one record of a table: an ordered mapping from column name to Value.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow builds a Row from alternating column names and values.
// It panics on an odd argument count or a non-string column name.
func NewRow(pairs ...any) Row {
	if len(pairs)%2 != 0 {
		panic("reconcile: NewRow needs column/value pairs")
	}
	var r Row
	for i := 0; i < len(pairs); i += 2 {
		col, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("reconcile: column name %v is not a string", pairs[i]))
		}
		v, ok := pairs[i+1].(Value)
		if !ok {
			var err error
			v, err = FromDriver(pairs[i+1], "")
			if err != nil {
				panic(err)
			}
		}
		r.Set(col, v)
	}
	return r
}

// Set assigns a column value, appending the column if it is new.
func (r *Row) Set(column string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[column]; !exists {
		r.columns = append(r.columns, column)
	}
	r.values[column] = v
}

// Get returns the value of a column.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in read order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Equal reports full structural equality: the same column set with equal values.
// Column order does not take part in equality.
func (r Row) Equal(o Row) bool {
	if len(r.columns) != len(o.columns) {
		return false
	}
	for col, v := range r.values {
		ov, ok := o.values[col]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ChangedColumns lists, in r's column order, the columns whose values differ in o.
func (r Row) ChangedColumns(o Row) []string {
	var changed []string
	for _, col := range r.columns {
		ov, ok := o.values[col]
		if !ok || !r.values[col].Equal(ov) {
			changed = append(changed, col)
		}
	}
	return changed
}

// Map returns the row as driver values keyed by column, ready for a write statement.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for _, col := range r.columns {
		m[col] = r.values[col].Interface()
	}
	return m
}

// String renders the row as {col=value, ...} in column order.
func (r Row) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteByte('=')
		sb.WriteString(r.values[col].String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON encodes the row as a JSON object preserving column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		name, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := r.values[col].MarshalJSON()
		if err != nil {
			return nil, err
		}
		sb.Write(name)
		sb.WriteByte(':')
		sb.Write(val)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// KeyedRowSet indexes the rows of one table snapshot by their key column value.
type KeyedRowSet struct {
	keyColumn string
	keys      map[string]Value
	rows      map[string]Row
}

// NewKeyedRowSet returns an empty set keyed by keyColumn.
func NewKeyedRowSet(keyColumn string) *KeyedRowSet {
	return &KeyedRowSet{
		keyColumn: keyColumn,
		keys:      make(map[string]Value),
		rows:      make(map[string]Row),
	}
}

// KeyColumn returns the column the set is indexed on.
func (s *KeyedRowSet) KeyColumn() string { return s.keyColumn }

// Add indexes a row by its key column value.
func (s *KeyedRowSet) Add(row Row) error {
	key, ok := row.Get(s.keyColumn)
	if !ok {
		return fmt.Errorf("%w: row has no key column %q", ErrSchema, s.keyColumn)
	}
	if key.IsNull() {
		return fmt.Errorf("%w: NULL value in key column %q", ErrSchema, s.keyColumn)
	}
	id := key.mapKey()
	if _, exists := s.rows[id]; exists {
		return fmt.Errorf("%w: key %s appears more than once in column %q", ErrDuplicateKey, key, s.keyColumn)
	}
	s.keys[id] = key
	s.rows[id] = row
	return nil
}

// Get returns the row stored under key.
func (s *KeyedRowSet) Get(key Value) (Row, bool) {
	row, ok := s.rows[key.mapKey()]
	return row, ok
}

// Len returns the number of rows.
func (s *KeyedRowSet) Len() int { return len(s.rows) }

// Keys returns every key in ascending order.
func (s *KeyedRowSet) Keys() []Value {
	keys := make([]Value, 0, len(s.keys))
	for _, k := range s.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Compare(keys[j]) < 0
	})
	return keys
}
