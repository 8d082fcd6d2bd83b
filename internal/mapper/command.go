package mapper

import (
	"github.com/roach88/mapperkit/internal/session"
)

// Command is the statement a method is bound to.
// Immutable after construction.
type Command struct {
	// Name is the statement id. Empty for flush methods without a statement.
	Name string

	// Kind is never session.KindUnknown.
	Kind session.Kind
}

// NewCommand resolves the statement for m.
//
// Lookup order:
//  1. "<mapper namespace>.<method>"
//  2. "<declaring namespace>.<method>" for methods promoted from an embedded struct
//  3. a statement-less flush command if the method is tagged mapper:"flush"
//
// Only the declaring struct is tried as a fallback, not structs embedded
// further up.
func NewCommand(cfg session.Configuration, m Method) (Command, error) {
	id := Namespace(m.Mapper) + "." + m.Name

	var stmt *session.Statement
	if cfg.HasStatement(id) {
		s, err := cfg.Statement(id)
		if err != nil {
			return Command{}, newError(ErrCodeUnboundOperation, "lookup statement %s", id).withMethod(m).wrapping(err)
		}
		stmt = s
	} else if m.Inherited() {
		parentID := Namespace(m.Declaring) + "." + m.Name
		if cfg.HasStatement(parentID) {
			s, err := cfg.Statement(parentID)
			if err != nil {
				return Command{}, newError(ErrCodeUnboundOperation, "lookup statement %s", parentID).withMethod(m).wrapping(err)
			}
			stmt = s
		}
	}

	if stmt == nil {
		if m.Flush {
			return Command{Kind: session.KindFlush}, nil
		}
		return Command{}, newError(ErrCodeUnboundOperation, "invalid bound statement (not found): %s", id).withMethod(m)
	}

	if stmt.Kind == session.KindUnknown {
		return Command{}, newError(ErrCodeUnsupportedOperationKind, "unknown execution method for: %s", stmt.ID).
			withMethod(m).withStatement(stmt.ID)
	}
	return Command{Name: stmt.ID, Kind: stmt.Kind}, nil
}
