package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/mapperkit/internal/session"
)

var (
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("store: session closed")

	// ErrTooManyResults is returned by SelectOne when more than one row matches.
	ErrTooManyResults = errors.New("store: too many results")
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTx runs the session's statements in a transaction, begun on first
// use and ended by Commit or Rollback.
func WithTx() SessionOption {
	return func(s *Session) {
		s.txMode = true
	}
}

// WithBatch queues mutations until FlushStatements, Commit or Close.
// Queued mutations report 0 affected rows.
func WithBatch() SessionOption {
	return func(s *Session) {
		s.batch = true
	}
}

type queued struct {
	id   string
	stmt compiled
}

// Session implements session.Session over a Store.
//
// Thread-safety: a Session is not safe for concurrent use.
type Session struct {
	id     string
	store  *Store
	cfg    session.Configuration
	txMode bool
	batch  bool

	tx     *sql.Tx
	queue  []queued
	closed bool
}

// Session opens a session that resolves statements through cfg.
func (s *Store) Session(cfg session.Configuration, opts ...SessionOption) *Session {
	sess := &Session{
		id:    uuid.Must(uuid.NewV7()).String(),
		store: s,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(sess)
	}
	slog.Debug("session opened", "session", sess.id, "tx", sess.txMode, "batch", sess.batch)
	return sess
}

// ID returns the session id used in log records.
func (s *Session) ID() string {
	return s.id
}

// Configuration implements session.Session.
func (s *Session) Configuration() session.Configuration {
	return s.cfg
}

func (s *Session) querier(ctx context.Context) (querier, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.txMode {
		return s.store.db, nil
	}
	if s.tx == nil {
		tx, err := s.store.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin tx: %w", err)
		}
		s.tx = tx
	}
	return s.tx, nil
}

func (s *Session) prepare(id string, param any) (*session.Statement, compiled, error) {
	if s.closed {
		return nil, compiled{}, ErrSessionClosed
	}
	stmt, err := s.cfg.Statement(id)
	if err != nil {
		return nil, compiled{}, err
	}
	c, err := compileSQL(stmt.SQL, param)
	if err != nil {
		return nil, compiled{}, fmt.Errorf("statement %s: %w", id, err)
	}
	return stmt, c, nil
}

// Insert implements session.Session.
func (s *Session) Insert(ctx context.Context, id string, param any) (int64, error) {
	return s.update(ctx, id, param)
}

// Update implements session.Session.
func (s *Session) Update(ctx context.Context, id string, param any) (int64, error) {
	return s.update(ctx, id, param)
}

// Delete implements session.Session.
func (s *Session) Delete(ctx context.Context, id string, param any) (int64, error) {
	return s.update(ctx, id, param)
}

func (s *Session) update(ctx context.Context, id string, param any) (int64, error) {
	_, c, err := s.prepare(id, param)
	if err != nil {
		return 0, err
	}
	if s.batch {
		s.queue = append(s.queue, queued{id: id, stmt: c})
		slog.Debug("statement queued", "session", s.id, "statement", id, "queued", len(s.queue))
		return 0, nil
	}

	q, err := s.querier(ctx)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, q, id, c)
}

func (s *Session) exec(ctx context.Context, q querier, id string, c compiled) (int64, error) {
	slog.Debug("execute statement", "session", s.id, "statement", id, "sql", c.sql)
	res, err := q.ExecContext(ctx, c.sql, c.args...)
	if err != nil {
		return 0, fmt.Errorf("statement %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("statement %s: rows affected: %w", id, err)
	}
	return n, nil
}

// FlushStatements implements session.Session. Queued statements run in
// order inside one transaction; the first failure rolls the flush back and
// leaves the queue empty.
func (s *Session) FlushStatements(ctx context.Context) ([]session.BatchResult, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	results := make([]session.BatchResult, 0, len(s.queue))
	if len(s.queue) == 0 {
		return results, nil
	}

	pending := s.queue
	s.queue = nil

	q, err := s.querier(ctx)
	if err != nil {
		return nil, err
	}
	var own *sql.Tx
	if s.tx == nil {
		own, err = s.store.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("flush: begin tx: %w", err)
		}
		defer own.Rollback() // No-op if committed
		q = own
	}

	for _, p := range pending {
		n, err := s.exec(ctx, q, p.id, p.stmt)
		if err != nil {
			return nil, fmt.Errorf("flush: %w", err)
		}
		results = append(results, session.BatchResult{StatementID: p.id, RowsAffected: n})
	}

	if own != nil {
		if err := own.Commit(); err != nil {
			return nil, fmt.Errorf("flush: commit: %w", err)
		}
	}
	slog.Debug("statements flushed", "session", s.id, "count", len(results))
	return results, nil
}

// Commit flushes queued statements and commits the open transaction.
func (s *Session) Commit(ctx context.Context) error {
	if _, err := s.FlushStatements(ctx); err != nil {
		return err
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards queued statements and rolls back the open transaction.
func (s *Session) Rollback() error {
	s.queue = nil
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// Close rolls back uncommitted work. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Rollback()
	s.closed = true
	slog.Debug("session closed", "session", s.id)
	return err
}

// query runs a select and returns its rows with a mapper for them.
func (s *Session) query(ctx context.Context, id string, param any) (*sql.Rows, *rowMapper, error) {
	stmt, c, err := s.prepare(id, param)
	if err != nil {
		return nil, nil, err
	}
	q, err := s.querier(ctx)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("query statement", "session", s.id, "statement", id, "sql", c.sql)
	rows, err := q.QueryContext(ctx, c.sql, c.args...)
	if err != nil {
		return nil, nil, fmt.Errorf("statement %s: %w", id, err)
	}
	m, err := newRowMapper(rows, stmt.ResultType)
	if err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("statement %s: %w", id, err)
	}
	return rows, m, nil
}

// each maps every row inside bounds and passes it to fn.
// fn returning session.ErrStop ends the read without error.
func (s *Session) each(ctx context.Context, id string, param any, bounds session.RowBounds, fn func(row any) error) error {
	rows, m, err := s.query(ctx, id, param)
	if err != nil {
		return err
	}
	defer rows.Close()

	w := window{bounds: bounds}
	for rows.Next() {
		take, more := w.step()
		if !more {
			break
		}
		if !take {
			continue
		}
		row, err := m.scan(rows)
		if err != nil {
			return fmt.Errorf("statement %s: %w", id, err)
		}
		if err := fn(row); err != nil {
			if errors.Is(err, session.ErrStop) {
				return nil
			}
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("statement %s: iterate rows: %w", id, err)
	}
	return nil
}

// SelectOne implements session.Session. No rows yields nil.
func (s *Session) SelectOne(ctx context.Context, id string, param any) (any, error) {
	list, err := s.SelectList(ctx, id, param, session.DefaultRowBounds)
	if err != nil {
		return nil, err
	}
	switch len(list) {
	case 0:
		return nil, nil
	case 1:
		return list[0], nil
	default:
		return nil, fmt.Errorf("%w: expected one result (or nil) from %s, but found: %d", ErrTooManyResults, id, len(list))
	}
}

// SelectList implements session.Session.
func (s *Session) SelectList(ctx context.Context, id string, param any, bounds session.RowBounds) ([]any, error) {
	list := []any{}
	err := s.each(ctx, id, param, bounds, func(row any) error {
		list = append(list, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// SelectMap implements session.Session. Later rows replace earlier rows
// with the same key.
func (s *Session) SelectMap(ctx context.Context, id string, param any, mapKey string, bounds session.RowBounds) (map[any]any, error) {
	out := make(map[any]any)
	err := s.each(ctx, id, param, bounds, func(row any) error {
		key, err := keyOf(row, mapKey)
		if err != nil {
			return fmt.Errorf("statement %s: map key: %w", id, err)
		}
		key, err = hashableKey(key)
		if err != nil {
			return fmt.Errorf("statement %s: map key %q: %w", id, mapKey, err)
		}
		out[key] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Select implements session.Session.
func (s *Session) Select(ctx context.Context, id string, param any, bounds session.RowBounds, handler session.RowHandler) error {
	if handler == nil {
		return fmt.Errorf("statement %s: nil row handler", id)
	}
	return s.each(ctx, id, param, bounds, handler.HandleRow)
}

// SelectCursor implements session.Session. The cursor holds the store's
// connection until closed.
func (s *Session) SelectCursor(ctx context.Context, id string, param any, bounds session.RowBounds) (session.Cursor, error) {
	rows, m, err := s.query(ctx, id, param)
	if err != nil {
		return nil, err
	}
	return &cursor{id: id, rows: rows, mapper: m, window: window{bounds: bounds}}, nil
}

// window applies row bounds while reading.
type window struct {
	bounds session.RowBounds
	seen   int
	taken  int
}

// step accounts for one more row. take reports whether the row is inside
// the window; more is false once the limit has been reached.
func (w *window) step() (take, more bool) {
	if w.bounds.Limit > 0 && w.taken >= w.bounds.Limit {
		return false, false
	}
	w.seen++
	if w.seen <= w.bounds.Offset {
		return false, true
	}
	w.taken++
	return true, true
}

// cursor is a session.Cursor over open rows.
type cursor struct {
	id     string
	rows   *sql.Rows
	mapper *rowMapper
	window window
	value  any
	err    error
	closed bool
}

func (c *cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	for c.rows.Next() {
		take, more := c.window.step()
		if !more {
			break
		}
		if !take {
			continue
		}
		c.value, c.err = c.mapper.scan(c.rows)
		if c.err != nil {
			c.err = fmt.Errorf("statement %s: %w", c.id, c.err)
			c.Close()
			return false
		}
		return true
	}
	if err := c.rows.Err(); err != nil {
		c.err = fmt.Errorf("statement %s: iterate rows: %w", c.id, err)
	}
	c.Close()
	return false
}

func (c *cursor) Value() any {
	return c.value
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}
