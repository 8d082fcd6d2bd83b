package session

import "reflect"

// Statement is a registered data operation.
type Statement struct {
	// ID is unique within a Configuration, usually "<namespace>.<method>".
	ID string

	// Kind is the statement's operation kind.
	Kind Kind

	// SQL is the statement text with #{name} placeholders.
	SQL string

	// ResultType is the Go type rows map into. Nil means the statement
	// declares no result mapping.
	ResultType reflect.Type

	// ResultTypeName is the name ResultType was resolved from.
	ResultTypeName string
}

// HasResultMapping reports whether rows of this statement have a declared shape.
func (s *Statement) HasResultMapping() bool {
	return s.ResultType != nil
}

// Configuration is the engine's statement registry.
type Configuration interface {
	HasStatement(id string) bool
	Statement(id string) (*Statement, error)
	ObjectFactory() ObjectFactory
	TypeResolver() TypeResolver
}
