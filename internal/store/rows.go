package store

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

var (
	mapRowType = reflect.TypeFor[map[string]any]()
	timeType   = reflect.TypeFor[time.Time]()
)

// rowMapper turns result rows into values of one result type.
type rowMapper struct {
	// target is nil for map rows.
	target  reflect.Type
	columns []string
	blob    []bool
	fields  [][]int // per column, nil when no field matches
}

func newRowMapper(rows *sql.Rows, resultType reflect.Type) (*rowMapper, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	m := &rowMapper{
		columns: make([]string, len(types)),
		blob:    make([]bool, len(types)),
	}
	for i, ct := range types {
		m.columns[i] = ct.Name()
		m.blob[i] = strings.EqualFold(ct.DatabaseTypeName(), "BLOB")
	}

	if resultType == nil || resultType == mapRowType || resultType.Kind() == reflect.Interface {
		return m, nil
	}
	m.target = resultType

	if st := structType(resultType); st != nil {
		index := fieldIndex(st)
		m.fields = make([][]int, len(m.columns))
		for i, col := range m.columns {
			m.fields[i] = index[normalizeColumn(col)]
		}
	} else if len(m.columns) == 0 {
		return nil, errors.New("query returned no columns")
	}
	return m, nil
}

// scan reads the current row.
func (m *rowMapper) scan(rows *sql.Rows) (any, error) {
	raw := make([]any, len(m.columns))
	ptrs := make([]any, len(m.columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	for i, v := range raw {
		if b, ok := v.([]byte); ok && !m.blob[i] {
			raw[i] = string(b)
		}
	}

	switch {
	case m.target == nil:
		row := make(map[string]any, len(m.columns))
		for i, col := range m.columns {
			row[col] = raw[i]
		}
		return row, nil

	case m.fields != nil:
		return m.scanStruct(raw)

	default:
		if raw[0] == nil {
			return nil, nil
		}
		out := reflect.New(m.target).Elem()
		if err := assign(out, raw[0]); err != nil {
			return nil, fmt.Errorf("column %s: %w", m.columns[0], err)
		}
		return out.Interface(), nil
	}
}

func (m *rowMapper) scanStruct(raw []any) (any, error) {
	ptr := reflect.New(structType(m.target))
	sv := ptr.Elem()
	for i, idx := range m.fields {
		if idx == nil || raw[i] == nil {
			continue
		}
		if err := assign(sv.FieldByIndex(idx), raw[i]); err != nil {
			return nil, fmt.Errorf("column %s: %w", m.columns[i], err)
		}
	}
	if m.target.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return sv.Interface(), nil
}

// assign stores a driver value into dst, converting between the kinds
// SQLite returns and common Go field types.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.Bool && src.CanInt():
		dst.SetBool(src.Int() != 0)
	case dst.Kind() == reflect.String:
		switch s := v.(type) {
		case string:
			dst.SetString(s)
		case []byte:
			dst.SetString(string(s))
		default:
			dst.SetString(fmt.Sprint(v))
		}
	case dst.Type() == timeType:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as time.Time", v)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
	case src.Type().ConvertibleTo(dst.Type()) && isNumber(src.Kind()) && isNumber(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	case dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as %s", v, dst.Type())
		}
		dst.SetBytes([]byte(s))
	default:
		return fmt.Errorf("cannot use %T as %s", v, dst.Type())
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// structType returns the struct behind t (or *t), or nil. time.Time maps
// as a scalar.
func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil
	}
	return t
}

// normalizeColumn folds a column or field name for matching.
func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

var fieldIndexes sync.Map // reflect.Type -> map[string][]int

// fieldIndex maps normalized names to field index paths for the exported
// fields of struct type t, promoted fields included.
func fieldIndex(t reflect.Type) map[string][]int {
	if cached, ok := fieldIndexes.Load(t); ok {
		return cached.(map[string][]int)
	}
	index := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("db"); ok {
			if tag == "-" {
				continue
			}
			if tag, _, _ = strings.Cut(tag, ","); tag != "" {
				name = tag
			}
		}
		key := normalizeColumn(name)
		if _, dup := index[key]; !dup {
			index[key] = f.Index
		}
	}
	actual, _ := fieldIndexes.LoadOrStore(t, index)
	return actual.(map[string][]int)
}

// keyOf reads the map key column or field from a mapped row.
func keyOf(row any, key string) (any, error) {
	if m, ok := row.(map[string]any); ok {
		if v, ok := m[key]; ok {
			return v, nil
		}
		for col, v := range m {
			if normalizeColumn(col) == normalizeColumn(key) {
				return v, nil
			}
		}
		return nil, fmt.Errorf("row has no column %q", key)
	}
	return lookupField(row, key)
}

// hashableKey returns v in a form usable as a Go map key.
// BLOB keys become strings.
func hashableKey(v any) (any, error) {
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	if v != nil && !reflect.TypeOf(v).Comparable() {
		return nil, fmt.Errorf("value of type %T is not comparable", v)
	}
	return v, nil
}
