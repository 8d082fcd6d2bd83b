package session

import (
	"fmt"
	"reflect"
)

// Collection is implemented (on the pointer receiver) by user-declared
// collection types that a list read can fill.
type Collection interface {
	AddAll(items []any) error
}

var collectionType = reflect.TypeFor[Collection]()

// ObjectFactory materializes user-declared collection types.
type ObjectFactory interface {
	// IsCollection reports whether t can receive a list result.
	IsCollection(t reflect.Type) bool

	// Create returns a new addressable instance of t.
	Create(t reflect.Type) (reflect.Value, error)

	// AddAll inserts items into target, which was returned by Create.
	AddAll(target reflect.Value, items []any) error
}

// DefaultObjectFactory recognises types whose pointer implements Collection,
// and pointer types whose element does.
type DefaultObjectFactory struct{}

// IsCollection implements ObjectFactory.
func (DefaultObjectFactory) IsCollection(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		return t.Implements(collectionType)
	}
	return reflect.PointerTo(t).Implements(collectionType)
}

// Create implements ObjectFactory. For pointer types the value is a fresh
// pointer to a zero element.
func (f DefaultObjectFactory) Create(t reflect.Type) (reflect.Value, error) {
	if !f.IsCollection(t) {
		return reflect.Value{}, fmt.Errorf("type %s is not a collection", t)
	}
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()), nil
	}
	return reflect.New(t).Elem(), nil
}

// AddAll implements ObjectFactory.
func (DefaultObjectFactory) AddAll(target reflect.Value, items []any) error {
	var c Collection
	switch {
	case target.Kind() == reflect.Pointer:
		c, _ = target.Interface().(Collection)
	case target.CanAddr():
		c, _ = target.Addr().Interface().(Collection)
	}
	if c == nil {
		return fmt.Errorf("type %s does not accept items", target.Type())
	}
	return c.AddAll(items)
}

// TypeResolver resolves a mapper method's declared result type.
type TypeResolver interface {
	ResolveReturnType(mapper reflect.Type, method reflect.StructField, declared reflect.Type) reflect.Type
}

// DefaultTypeResolver returns the declared type unchanged: generic mapper
// structs are instantiated before reflection sees them.
type DefaultTypeResolver struct{}

// ResolveReturnType implements TypeResolver.
func (DefaultTypeResolver) ResolveReturnType(_ reflect.Type, _ reflect.StructField, declared reflect.Type) reflect.Type {
	return declared
}
