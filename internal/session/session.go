package session

import (
	"context"
	"errors"
)

// ErrStop may be returned by a RowHandler to end a streamed read early.
// Engines treat it as a normal end of results.
var ErrStop = errors.New("session: stop reading rows")

// RowBounds limits the window of rows a read returns.
// A zero or negative Limit means no limit.
type RowBounds struct {
	Offset int
	Limit  int
}

// DefaultRowBounds returns every row.
var DefaultRowBounds = RowBounds{}

// RowBounds implements Bounded.
func (b RowBounds) RowBounds() RowBounds {
	return b
}

// Unbounded reports whether b selects every row.
func (b RowBounds) Unbounded() bool {
	return b.Offset <= 0 && b.Limit <= 0
}

// Bounded is implemented by parameter types that carry paging controls.
// A mapper method may declare at most one such parameter.
type Bounded interface {
	RowBounds() RowBounds
}

// RowHandler receives rows one at a time from a streamed read.
// A mapper method may declare at most one such parameter.
type RowHandler interface {
	HandleRow(row any) error
}

// RowHandlerFunc adapts a function to RowHandler.
type RowHandlerFunc func(row any) error

// HandleRow calls f(row).
func (f RowHandlerFunc) HandleRow(row any) error {
	return f(row)
}

// Cursor is a lazy, forward-only sequence over read results.
// The caller owns the cursor and must Close it.
type Cursor interface {
	Next() bool
	Value() any
	Err() error
	Close() error
}

// ParamSource is a named parameter bag built from method arguments.
// Get fails for names that were never populated.
type ParamSource interface {
	Get(name string) (any, error)
	Has(name string) bool
	Names() []string
}

// BatchResult reports the outcome of one queued statement after a flush.
type BatchResult struct {
	StatementID  string
	RowsAffected int64
}

// Session executes statements. Implementations need not be safe for
// concurrent use.
type Session interface {
	Insert(ctx context.Context, id string, param any) (int64, error)
	Update(ctx context.Context, id string, param any) (int64, error)
	Delete(ctx context.Context, id string, param any) (int64, error)

	SelectOne(ctx context.Context, id string, param any) (any, error)
	SelectList(ctx context.Context, id string, param any, bounds RowBounds) ([]any, error)
	SelectMap(ctx context.Context, id string, param any, mapKey string, bounds RowBounds) (map[any]any, error)
	SelectCursor(ctx context.Context, id string, param any, bounds RowBounds) (Cursor, error)
	Select(ctx context.Context, id string, param any, bounds RowBounds, handler RowHandler) error

	FlushStatements(ctx context.Context) ([]BatchResult, error)

	Configuration() Configuration
}
