package mapper

import (
	"reflect"
	"strings"
)

var errorType = reflect.TypeFor[error]()

// Namespacer lets a mapper type choose the namespace of its statement ids.
type Namespacer interface {
	Namespace() string
}

var namespacerType = reflect.TypeFor[Namespacer]()

// Namespace returns the statement namespace of a mapper type: the result of
// its Namespace method if it has one, otherwise the package-qualified type
// name without type arguments ("store.UserMapper", "mapper.CrudMapper").
func Namespace(t reflect.Type) string {
	switch {
	case t.Implements(namespacerType):
		return reflect.Zero(t).Interface().(Namespacer).Namespace()
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(namespacerType):
		return reflect.New(t).Interface().(Namespacer).Namespace()
	}
	name := t.String()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// Method describes one mapper method as declared on a mapper struct.
type Method struct {
	// Name is the method name used in statement ids.
	Name string

	// Mapper is the mapper type the method was reached from.
	Mapper reflect.Type

	// Declaring is the struct that declares the func field. It differs from
	// Mapper for methods promoted from an embedded struct.
	Declaring reflect.Type

	// Field is the func field.
	Field reflect.StructField

	// Func is the method's func type.
	Func reflect.Type

	// ParamNames holds the param tag entry per position ("" when unnamed).
	ParamNames []string

	// MapKey is the mapkey tag value.
	MapKey string

	// Flush marks a flush method.
	Flush bool
}

// NewMethod describes the func field f of declaring, reached from mapper.
func NewMethod(mapper, declaring reflect.Type, f reflect.StructField) (Method, error) {
	m := Method{
		Name:      f.Name,
		Mapper:    mapper,
		Declaring: declaring,
		Field:     f,
		Func:      f.Type,
		MapKey:    f.Tag.Get("mapkey"),
	}

	if f.Type.Kind() != reflect.Func {
		return m, newError(ErrCodeInvalidMethod, "field %s is a %s, not a func", f.Name, f.Type.Kind()).withMethod(m)
	}

	for _, opt := range strings.Split(f.Tag.Get("mapper"), ",") {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "flush":
			m.Flush = true
		case strings.HasPrefix(opt, "name="):
			m.Name = strings.TrimPrefix(opt, "name=")
		default:
			return m, newError(ErrCodeInvalidMethod, "unknown mapper tag option %q", opt).withMethod(m)
		}
	}

	ft := f.Type
	if ft.IsVariadic() {
		return m, newError(ErrCodeInvalidMethod, "variadic methods are not supported").withMethod(m)
	}
	switch {
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return m, newError(ErrCodeInvalidMethod, "method must return error or (T, error), got %s", ft).withMethod(m)
	}

	m.ParamNames = make([]string, ft.NumIn())
	if tag := f.Tag.Get("param"); tag != "" {
		names := strings.Split(tag, ",")
		if len(names) > ft.NumIn() {
			return m, newError(ErrCodeInvalidMethod, "param tag names %d parameters, method has %d", len(names), ft.NumIn()).withMethod(m)
		}
		for i, name := range names {
			name = strings.TrimSpace(name)
			if name == "_" {
				name = ""
			}
			m.ParamNames[i] = name
		}
	}
	return m, nil
}

// FullName returns "<mapper namespace>.<method name>".
func (m Method) FullName() string {
	if m.Mapper == nil {
		return m.Name
	}
	return Namespace(m.Mapper) + "." + m.Name
}

// Inherited reports whether the method is promoted from an embedded struct.
func (m Method) Inherited() bool {
	return m.Declaring != nil && m.Declaring != m.Mapper
}

// ReturnType returns the declared result type, or nil for error-only methods.
func (m Method) ReturnType() reflect.Type {
	if m.Func.NumOut() == 2 {
		return m.Func.Out(0)
	}
	return nil
}
