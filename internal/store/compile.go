package store

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/mapperkit/internal/session"
)

// compiled is a statement ready for database/sql.
type compiled struct {
	sql  string
	args []any
	// names lists the placeholder names in argument order.
	names []string
}

// compileSQL replaces every #{name} in text with ? and resolves its value
// from param. Values are always passed as arguments, never interpolated.
func compileSQL(text string, param any) (compiled, error) {
	var (
		b   strings.Builder
		out compiled
	)
	b.Grow(len(text))

	rest := text
	for {
		start := strings.Index(rest, "#{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return compiled{}, fmt.Errorf("unterminated placeholder at offset %d", len(text)-len(rest)+start)
		}
		end += start

		name := strings.TrimSpace(rest[start+2 : end])
		if name == "" {
			return compiled{}, fmt.Errorf("empty placeholder at offset %d", len(text)-len(rest)+start)
		}
		value, err := resolve(param, name)
		if err != nil {
			return compiled{}, err
		}

		b.WriteString(rest[:start])
		b.WriteByte('?')
		out.args = append(out.args, value)
		out.names = append(out.names, name)
		rest = rest[end+1:]
	}

	out.sql = b.String()
	return out, nil
}

// resolve looks up a possibly dotted placeholder name in param.
func resolve(param any, name string) (any, error) {
	segments := strings.Split(name, ".")
	value, err := lookupRoot(param, segments[0])
	if err != nil {
		return nil, err
	}
	for i, seg := range segments[1:] {
		value, err = lookupField(value, seg)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", strings.Join(segments[:i+2], "."), err)
		}
	}
	return driverValue(value), nil
}

func lookupRoot(param any, name string) (any, error) {
	switch p := param.(type) {
	case session.ParamSource:
		return p.Get(name)
	case map[string]any:
		v, ok := p[name]
		if !ok {
			return nil, fmt.Errorf("parameter %q not found", name)
		}
		return v, nil
	}
	if isStruct(param) {
		return lookupField(param, name)
	}
	return param, nil
}

// lookupField reads a struct field or map entry named name from v.
func lookupField(v any, name string) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot read %q from nil", name)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		idx, ok := fieldIndex(rv.Type())[normalizeColumn(name)]
		if !ok {
			return nil, fmt.Errorf("type %s has no field %q", rv.Type(), name)
		}
		return rv.FieldByIndex(idx).Interface(), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, fmt.Errorf("key %q not found", name)
		}
		return mv.Interface(), nil
	}
	return nil, fmt.Errorf("cannot read %q from %s", name, rv.Type())
}

func isStruct(v any) bool {
	switch v.(type) {
	case nil, driver.Valuer, time.Time, *time.Time:
		return false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// driverValue dereferences pointers so database/sql sees plain values.
func driverValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
