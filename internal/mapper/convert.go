package mapper

import (
	"fmt"
	"reflect"

	"github.com/roach88/mapperkit/internal/session"
)

var (
	batchResultType  = reflect.TypeFor[session.BatchResult]()
	batchResultsType = reflect.TypeFor[[]session.BatchResult]()
)

// coerce converts a raw engine value into t.
// Nil stays nil; a nil t (void) discards the value.
func coerce(raw any, t reflect.Type) (any, error) {
	if t == nil || raw == nil {
		return nil, nil
	}
	v, err := coerceValue(reflect.ValueOf(raw), t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// coerceValue accepts assignable values, addresses values for pointer
// targets, follows pointers and interfaces, converts between numeric kinds
// and between string kinds, and rebuilds slices and maps element-wise.
func coerceValue(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		v = v.Elem()
	}

	if v.Type().AssignableTo(t) {
		if v.Type() == t {
			return v, nil
		}
		out := reflect.New(t).Elem()
		out.Set(v)
		return out, nil
	}

	switch {
	case t.Kind() == reflect.Pointer:
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return reflect.Zero(t), nil
		}
		elem, err := coerceValue(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(elem)
		return p, nil

	case v.Kind() == reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		return coerceValue(v.Elem(), t)

	case isNumeric(v.Kind()) && isNumeric(t.Kind()),
		v.Kind() == reflect.String && t.Kind() == reflect.String,
		v.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return v.Convert(t), nil

	case v.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		return coerceSlice(v, t)

	case v.Kind() == reflect.Map && t.Kind() == reflect.Map:
		return coerceMap(v, t)
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), t)
}

// coerceSlice copies v into a new slice of type t, keeping element order.
func coerceSlice(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	n := v.Len()
	out := reflect.MakeSlice(t, n, n)
	for i := 0; i < n; i++ {
		elem, err := coerceValue(v.Index(i), t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

func coerceMap(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(t, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := coerceValue(iter.Key(), t.Key())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
		}
		val, err := coerceValue(iter.Value(), t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("value for key %v: %w", iter.Key(), err)
		}
		out.SetMapIndex(key, val)
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// isPrimitive reports whether t has no nil value that could stand for a
// missing result.
func isPrimitive(t reflect.Type) bool {
	if t == nil {
		return false
	}
	return isNumeric(t.Kind()) || t.Kind() == reflect.Bool || t.Kind() == reflect.String ||
		t.Kind() == reflect.Complex64 || t.Kind() == reflect.Complex128
}

// isRowCountType reports whether a mutation may declare t as its result.
func isRowCountType(t reflect.Type) bool {
	if t == nil {
		return true
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Bool:
		return true
	}
	return false
}

// isFlushResultType reports whether a flush may declare t as its result.
func isFlushResultType(t reflect.Type) bool {
	if t == nil || batchResultsType.AssignableTo(t) {
		return true
	}
	return t.Kind() == reflect.Slice && batchResultType.AssignableTo(t.Elem())
}

// rowCount converts an affected row count into t, which passed isRowCountType.
func rowCount(n int64, t reflect.Type) any {
	if t == nil {
		return nil
	}
	target := t
	if t.Kind() == reflect.Pointer {
		target = t.Elem()
	}

	var v reflect.Value
	if target.Kind() == reflect.Bool {
		v = reflect.ValueOf(n > 0).Convert(target)
	} else {
		v = reflect.ValueOf(n).Convert(target)
	}

	if t.Kind() == reflect.Pointer {
		p := reflect.New(target)
		p.Elem().Set(v)
		return p.Interface()
	}
	return v.Interface()
}
