package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/mapperkit/internal/session"
)

// Call is one engine operation received by a FakeSession.
type Call struct {
	Op          string
	StatementID string
	Param       any
	Bounds      session.RowBounds
	MapKey      string

	// CtxErr is ctx.Err() at the time of the call.
	CtxErr error
}

// FakeSession is a session.Session answering from canned results.
//
// Mutations return RowCount, SelectOne returns One, SelectList and Select
// use List, SelectMap returns Map, SelectCursor iterates List, and
// FlushStatements returns Batch. A non-nil Err fails every operation.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeSession struct {
	mu    sync.Mutex
	calls []Call

	Config   session.Configuration
	RowCount int64
	One      any
	List     []any
	Map      map[any]any
	Batch    []session.BatchResult
	Err      error
}

// NewFakeSession creates a session over cfg.
func NewFakeSession(cfg session.Configuration) *FakeSession {
	return &FakeSession{Config: cfg}
}

func (s *FakeSession) record(ctx context.Context, c Call) error {
	c.CtxErr = ctx.Err()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.Err
}

// Calls returns a copy of the recorded calls.
func (s *FakeSession) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// LastCall returns the most recent call, or the zero Call.
func (s *FakeSession) LastCall() Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return Call{}
	}
	return s.calls[len(s.calls)-1]
}

// Insert implements session.Session.
func (s *FakeSession) Insert(ctx context.Context, id string, param any) (int64, error) {
	if err := s.record(ctx, Call{Op: "insert", StatementID: id, Param: param}); err != nil {
		return 0, err
	}
	return s.RowCount, nil
}

// Update implements session.Session.
func (s *FakeSession) Update(ctx context.Context, id string, param any) (int64, error) {
	if err := s.record(ctx, Call{Op: "update", StatementID: id, Param: param}); err != nil {
		return 0, err
	}
	return s.RowCount, nil
}

// Delete implements session.Session.
func (s *FakeSession) Delete(ctx context.Context, id string, param any) (int64, error) {
	if err := s.record(ctx, Call{Op: "delete", StatementID: id, Param: param}); err != nil {
		return 0, err
	}
	return s.RowCount, nil
}

// SelectOne implements session.Session.
func (s *FakeSession) SelectOne(ctx context.Context, id string, param any) (any, error) {
	if err := s.record(ctx, Call{Op: "selectOne", StatementID: id, Param: param}); err != nil {
		return nil, err
	}
	return s.One, nil
}

// SelectList implements session.Session.
func (s *FakeSession) SelectList(ctx context.Context, id string, param any, bounds session.RowBounds) ([]any, error) {
	if err := s.record(ctx, Call{Op: "selectList", StatementID: id, Param: param, Bounds: bounds}); err != nil {
		return nil, err
	}
	return s.List, nil
}

// SelectMap implements session.Session.
func (s *FakeSession) SelectMap(ctx context.Context, id string, param any, mapKey string, bounds session.RowBounds) (map[any]any, error) {
	if err := s.record(ctx, Call{Op: "selectMap", StatementID: id, Param: param, Bounds: bounds, MapKey: mapKey}); err != nil {
		return nil, err
	}
	return s.Map, nil
}

// SelectCursor implements session.Session.
func (s *FakeSession) SelectCursor(ctx context.Context, id string, param any, bounds session.RowBounds) (session.Cursor, error) {
	if err := s.record(ctx, Call{Op: "selectCursor", StatementID: id, Param: param, Bounds: bounds}); err != nil {
		return nil, err
	}
	return NewSliceCursor(s.List), nil
}

// Select implements session.Session. Rows from List go to handler until it
// returns session.ErrStop or another error.
func (s *FakeSession) Select(ctx context.Context, id string, param any, bounds session.RowBounds, handler session.RowHandler) error {
	if err := s.record(ctx, Call{Op: "select", StatementID: id, Param: param, Bounds: bounds}); err != nil {
		return err
	}
	for _, row := range s.List {
		if err := handler.HandleRow(row); err != nil {
			if errors.Is(err, session.ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// FlushStatements implements session.Session.
func (s *FakeSession) FlushStatements(ctx context.Context) ([]session.BatchResult, error) {
	if err := s.record(ctx, Call{Op: "flush"}); err != nil {
		return nil, err
	}
	return s.Batch, nil
}

// Configuration implements session.Session.
func (s *FakeSession) Configuration() session.Configuration {
	return s.Config
}

// SliceCursor is a session.Cursor over a slice.
type SliceCursor struct {
	rows   []any
	pos    int
	closed bool
}

// NewSliceCursor returns a cursor positioned before rows[0].
func NewSliceCursor(rows []any) *SliceCursor {
	return &SliceCursor{rows: rows, pos: -1}
}

// Next advances to the following row.
func (c *SliceCursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

// Value returns the current row.
func (c *SliceCursor) Value() any {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

// Err always returns nil.
func (c *SliceCursor) Err() error {
	return nil
}

// Close ends iteration.
func (c *SliceCursor) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *SliceCursor) Closed() bool {
	return c.closed
}
