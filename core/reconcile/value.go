package reconcile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the scalar type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindTime
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "bytes", "time"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged scalar read from, or written to, a table cell.
// The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
	t    time.Time
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating point value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a text value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bytes returns a binary value holding a copy of v.
func Bytes(v []byte) Value { return Value{kind: KindBytes, b: bytes.Clone(v)} }

// Time returns a timestamp value.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v} }

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface returns the value in a form accepted by database/sql drivers.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.i == 1
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// Equal reports structural equality. Values of different kinds are never equal,
// except that Int and Float compare numerically. Times compare as instants.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		if v.isNumeric() && o.isNumeric() {
			return v.number() == o.number()
		}
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.b, o.b)
	case KindTime:
		return v.t.Equal(o.t)
	}
	return false
}

// Compare orders values: NULL first, then by kind, then by value within a kind.
// Int and Float share the numeric order.
func (v Value) Compare(o Value) int {
	if v.isNumeric() && o.isNumeric() {
		if v.kind == KindInt && o.kind == KindInt {
			return cmpOrdered(v.i, o.i)
		}
		return cmpOrdered(v.number(), o.number())
	}
	if v.kind != o.kind {
		return cmpOrdered(v.rank(), o.rank())
	}
	switch v.kind {
	case KindBool:
		return cmpOrdered(v.i, o.i)
	case KindString:
		return strings.Compare(v.s, o.s)
	case KindBytes:
		return bytes.Compare(v.b, o.b)
	case KindTime:
		return v.t.Compare(o.t)
	}
	return 0
}

// String renders the value for logs and reports.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.i == 1)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.b)
	case KindTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	}
	return ""
}

// MarshalJSON encodes the value as its natural JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool, KindInt:
		return []byte(v.String()), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte(strconv.Quote(v.String())), nil
		}
		return []byte(v.String()), nil
	default:
		return []byte(strconv.Quote(v.String())), nil
	}
}

// mapKey is a canonical identity for use as a Go map key.
// Integral floats share the identity of the equal Int.
func (v Value) mapKey() string {
	if v.kind == KindFloat && v.f == math.Trunc(v.f) && math.Abs(v.f) < 1<<63 {
		return Int(int64(v.f)).mapKey()
	}
	if v.kind == KindTime {
		return "time:" + v.t.UTC().Format(time.RFC3339Nano)
	}
	return v.kind.String() + ":" + v.String()
}

func (v Value) isNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) number() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// rank places numeric kinds together so Compare is a total order.
func (v Value) rank() Kind {
	if v.kind == KindFloat {
		return KindInt
	}
	return v.kind
}

func cmpOrdered[T int64 | float64 | Kind](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// FromDriver converts a value scanned from database/sql into a Value.
// dbType is the column's database type name; it decides how raw bytes are read,
// since text protocols hand back most columns as []byte.
func FromDriver(v any, dbType string) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case int64:
		return Int(x), nil
	case int32:
		return Int(int64(x)), nil
	case int:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Float(float64(x)), nil
		}
		return Int(int64(x)), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case string:
		return String(x), nil
	case time.Time:
		return Time(x), nil
	case []byte:
		return fromRaw(x, dbType)
	default:
		return Value{}, fmt.Errorf("unsupported column value of type %T", v)
	}
}

func fromRaw(raw []byte, dbType string) (Value, error) {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "BLOB"), strings.Contains(t, "BINARY"):
		return Bytes(raw), nil
	case strings.Contains(t, "INT"):
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid %s value %q: %w", dbType, raw, err)
		}
		return Int(n), nil
	case t == "FLOAT", t == "DOUBLE", t == "REAL":
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid %s value %q: %w", dbType, raw, err)
		}
		return Float(f), nil
	default:
		// DECIMAL stays textual to keep its exact representation.
		return String(string(raw)), nil
	}
}
