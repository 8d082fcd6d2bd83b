package mapper

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/roach88/mapperkit/internal/session"
)

// methodKey identifies a func field reached from a mapper type.
type methodKey struct {
	mapper reflect.Type
	path   string
}

// Registry binds mapper structs against one Configuration and caches the
// MapperMethod built for every field, so each method is analyzed once.
//
// Thread-safety: Bind and Method are safe for concurrent use.
type Registry struct {
	cfg     session.Configuration
	opts    []Option
	methods sync.Map // methodKey -> *MapperMethod
}

// NewRegistry creates a registry over cfg. The options apply to every
// method it builds.
func NewRegistry(cfg session.Configuration, opts ...Option) *Registry {
	return &Registry{cfg: cfg, opts: opts}
}

// Configuration returns the registry's configuration.
func (r *Registry) Configuration() session.Configuration {
	return r.cfg
}

// Bind fills every exported func field of the struct target points to, and
// of the structs it embeds, with a call through sess.
//
// Fields of embedded structs are declared by the embedded type, which is
// where their statements are looked up when the mapper type has none.
func (r *Registry) Bind(target any, sess session.Session) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return newError(ErrCodeInvalidMapper, "bind target must be a non-nil pointer to a struct, got %T", target)
	}
	mapperType := rv.Elem().Type()
	return r.bindStruct(rv.Elem(), mapperType, mapperType, nil, sess)
}

func (r *Registry) bindStruct(sv reflect.Value, mapperType, declaring reflect.Type, path []int, sess session.Session) error {
	for i := 0; i < declaring.NumField(); i++ {
		f := declaring.Field(i)
		fieldPath := append(slices.Clone(path), i)

		switch {
		case f.Anonymous && f.Type.Kind() == reflect.Struct:
			if err := r.bindStruct(sv.Field(i), mapperType, f.Type, fieldPath, sess); err != nil {
				return err
			}

		case f.Type.Kind() == reflect.Func && f.IsExported():
			fv := sv.Field(i)
			if !fv.CanSet() {
				return newError(ErrCodeInvalidMapper, "field %s of %s cannot be set; embedded mapper types must be exported",
					f.Name, declaring)
			}
			mm, err := r.method(mapperType, declaring, f, fieldPath)
			if err != nil {
				return err
			}
			fv.Set(reflect.MakeFunc(f.Type, mm.adapter(sess)))
		}
	}
	return nil
}

// Method returns the cached MapperMethod for the func field at the given
// index path of mapperType, building it on first use.
func (r *Registry) Method(mapperType reflect.Type, path ...int) (*MapperMethod, error) {
	if mapperType.Kind() != reflect.Struct || len(path) == 0 {
		return nil, newError(ErrCodeInvalidMapper, "%s has no field at %v", mapperType, path)
	}
	declaring := mapperType
	for i, idx := range path {
		if declaring.Kind() != reflect.Struct || idx < 0 || idx >= declaring.NumField() {
			return nil, newError(ErrCodeInvalidMapper, "%s has no field at %v", mapperType, path)
		}
		if i == len(path)-1 {
			break
		}
		declaring = declaring.Field(idx).Type
	}
	return r.method(mapperType, declaring, declaring.Field(path[len(path)-1]), path)
}

func (r *Registry) method(mapperType, declaring reflect.Type, f reflect.StructField, path []int) (*MapperMethod, error) {
	key := methodKey{mapper: mapperType, path: fmt.Sprint(path)}
	if cached, ok := r.methods.Load(key); ok {
		return cached.(*MapperMethod), nil
	}

	m, err := NewMethod(mapperType, declaring, f)
	if err != nil {
		return nil, err
	}
	mm, err := New(r.cfg, m, r.opts...)
	if err != nil {
		return nil, err
	}

	actual, _ := r.methods.LoadOrStore(key, mm)
	return actual.(*MapperMethod), nil
}

// adapter returns the MakeFunc implementation of the method over sess.
func (mm *MapperMethod) adapter(sess session.Session) func([]reflect.Value) []reflect.Value {
	ft := mm.method.Func
	return func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, v := range in {
			args[i] = v.Interface()
		}

		result, err := mm.Execute(mm.signature.Context(args), sess, args)

		if ft.NumOut() == 1 {
			return []reflect.Value{errorValue(err)}
		}

		out := reflect.New(ft.Out(0)).Elem()
		if err == nil && result != nil {
			rv := reflect.ValueOf(result)
			if rv.Type().AssignableTo(out.Type()) {
				out.Set(rv)
			} else {
				err = mm.fail(ErrCodeResultTypeMismatch, "result of type %s does not fit %s", rv.Type(), out.Type())
			}
		}
		return []reflect.Value{out, errorValue(err)}
	}
}

func errorValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(errorType)
	}
	return reflect.ValueOf(&err).Elem()
}
