package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/mapperkit/internal/session"
)

var (
	// ErrDuplicateStatement is returned when a statement id is registered twice.
	ErrDuplicateStatement = errors.New("duplicate statement")

	// ErrStatementNotFound is returned by Statement for unknown ids.
	ErrStatementNotFound = errors.New("statement not found")

	// ErrUnknownResultType is returned when a statement names an unregistered type.
	ErrUnknownResultType = errors.New("unknown result type")
)

// StatementDef is a statement as written in a statement file.
type StatementDef struct {
	Namespace  string `yaml:"-" json:"namespace,omitempty"`
	ID         string `yaml:"id" json:"id"`
	Kind       string `yaml:"kind" json:"kind"`
	ResultType string `yaml:"resultType,omitempty" json:"resultType,omitempty"`
	SQL        string `yaml:"sql" json:"sql"`
}

// FullID returns "<namespace>.<id>", or the id alone without a namespace.
func (d StatementDef) FullID() string {
	if d.Namespace == "" {
		return d.ID
	}
	return d.Namespace + "." + d.ID
}

// Registry implements session.Configuration.
//
// Thread-safety: all methods are safe for concurrent use. Registries are
// normally filled once at startup and only read afterwards.
type Registry struct {
	mu         sync.RWMutex
	statements map[string]*session.Statement
	order      []string
	types      map[string]reflect.Type

	factory      session.ObjectFactory
	resolver     session.TypeResolver
	dynamicTypes bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithObjectFactory replaces session.DefaultObjectFactory.
func WithObjectFactory(f session.ObjectFactory) RegistryOption {
	return func(r *Registry) {
		r.factory = f
	}
}

// WithTypeResolver replaces session.DefaultTypeResolver.
func WithTypeResolver(tr session.TypeResolver) RegistryOption {
	return func(r *Registry) {
		r.resolver = tr
	}
}

// WithDynamicTypes resolves unregistered result type names to
// map[string]any rows instead of failing. Tools that load statement files
// without the application's Go types use it.
func WithDynamicTypes() RegistryOption {
	return func(r *Registry) {
		r.dynamicTypes = true
	}
}

// NewRegistry creates an empty registry with the builtin type aliases.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		statements: make(map[string]*session.Statement),
		types: map[string]reflect.Type{
			"map":     reflect.TypeFor[map[string]any](),
			"string":  reflect.TypeFor[string](),
			"int":     reflect.TypeFor[int](),
			"int64":   reflect.TypeFor[int64](),
			"float64": reflect.TypeFor[float64](),
			"bool":    reflect.TypeFor[bool](),
			"any":     reflect.TypeFor[any](),
		},
		factory:  session.DefaultObjectFactory{},
		resolver: session.DefaultTypeResolver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterType makes t available as a result type under name.
func (r *Registry) RegisterType(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = t
}

// Add registers a statement definition.
func (r *Registry) Add(def StatementDef) error {
	id := normalizeID(def.FullID())
	if id == "" {
		return fmt.Errorf("statement id is required")
	}

	stmt := &session.Statement{
		ID:             id,
		Kind:           session.ParseKind(def.Kind),
		SQL:            strings.TrimSpace(def.SQL),
		ResultTypeName: def.ResultType,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if def.ResultType != "" {
		t, ok := r.types[def.ResultType]
		if !ok && r.dynamicTypes {
			t, ok = r.types["map"], true
		}
		if !ok {
			return fmt.Errorf("statement %s: %w %q", id, ErrUnknownResultType, def.ResultType)
		}
		stmt.ResultType = t
	}

	if _, exists := r.statements[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStatement, id)
	}
	r.statements[id] = stmt
	r.order = append(r.order, id)
	return nil
}

// HasStatement implements session.Configuration.
func (r *Registry) HasStatement(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.statements[normalizeID(id)]
	return ok
}

// Statement implements session.Configuration.
func (r *Registry) Statement(id string) (*session.Statement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stmt, ok := r.statements[normalizeID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotFound, id)
	}
	return stmt, nil
}

// Statements returns all statements in registration order.
func (r *Registry) Statements() []*session.Statement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*session.Statement, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.statements[id])
	}
	return out
}

// Len returns the number of registered statements.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ObjectFactory implements session.Configuration.
func (r *Registry) ObjectFactory() session.ObjectFactory {
	return r.factory
}

// TypeResolver implements session.Configuration.
func (r *Registry) TypeResolver() session.TypeResolver {
	return r.resolver
}

// Problem is a statement that loaded but cannot be executed as written.
type Problem struct {
	StatementID string `json:"statement_id"`
	Message     string `json:"message"`
}

// Validate reports statements with an unknown kind or without SQL.
func (r *Registry) Validate() []Problem {
	var problems []Problem
	for _, stmt := range r.Statements() {
		switch {
		case stmt.Kind == session.KindUnknown:
			problems = append(problems, Problem{StatementID: stmt.ID, Message: "unknown statement kind"})
		case stmt.Kind != session.KindFlush && stmt.SQL == "":
			problems = append(problems, Problem{StatementID: stmt.ID, Message: "sql is empty"})
		}
	}
	return problems
}

func normalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
