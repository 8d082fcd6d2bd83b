package testutil

import (
	"fmt"
	"reflect"

	"github.com/roach88/mapperkit/internal/session"
)

// Config is a session.Configuration over a fixed statement table.
//
// Thread-safety: Config is not modified after construction except through
// Add, which tests call before binding.
type Config struct {
	statements map[string]*session.Statement

	// Factory and Resolver are returned as-is; nil selects the defaults.
	Factory  session.ObjectFactory
	Resolver session.TypeResolver
}

// NewConfig creates a configuration holding stmts.
func NewConfig(stmts ...*session.Statement) *Config {
	c := &Config{statements: make(map[string]*session.Statement)}
	for _, s := range stmts {
		c.Add(s)
	}
	return c
}

// Add registers s, replacing any statement with the same id.
func (c *Config) Add(s *session.Statement) {
	c.statements[s.ID] = s
}

// Stmt builds a statement without a result type.
func Stmt(id string, kind session.Kind) *session.Statement {
	return &session.Statement{ID: id, Kind: kind}
}

// Mapped builds a select statement whose rows map to resultType.
func Mapped(id string, resultType reflect.Type) *session.Statement {
	return &session.Statement{ID: id, Kind: session.KindSelect, ResultType: resultType, ResultTypeName: resultType.Name()}
}

// HasStatement implements session.Configuration.
func (c *Config) HasStatement(id string) bool {
	_, ok := c.statements[id]
	return ok
}

// Statement implements session.Configuration.
func (c *Config) Statement(id string) (*session.Statement, error) {
	s, ok := c.statements[id]
	if !ok {
		return nil, fmt.Errorf("statement %s not found", id)
	}
	return s, nil
}

// ObjectFactory implements session.Configuration.
func (c *Config) ObjectFactory() session.ObjectFactory {
	if c.Factory == nil {
		return session.DefaultObjectFactory{}
	}
	return c.Factory
}

// TypeResolver implements session.Configuration.
func (c *Config) TypeResolver() session.TypeResolver {
	if c.Resolver == nil {
		return session.DefaultTypeResolver{}
	}
	return c.Resolver
}
