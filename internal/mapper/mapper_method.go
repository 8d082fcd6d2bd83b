package mapper

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/mapperkit/internal/async"
	"github.com/roach88/mapperkit/internal/page"
	"github.com/roach88/mapperkit/internal/session"
)

// Option configures method construction.
type Option func(*options)

type options struct {
	executor async.Executor
}

// WithExecutor sets the executor for methods returning *async.Future.
// Default: async.Default(), started on first asynchronous call.
func WithExecutor(exec async.Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

// MapperMethod dispatches calls of one mapper method.
//
// Thread-safety: a MapperMethod holds only immutable descriptors and may be
// shared by concurrent callers. Each Execute issues exactly one session
// operation, or submits exactly one unit of asynchronous work.
type MapperMethod struct {
	method    Method
	command   Command
	signature *Signature
	factory   session.ObjectFactory
	executor  async.Executor
}

// New binds m to its statement in cfg and analyzes its signature.
func New(cfg session.Configuration, m Method, opts ...Option) (*MapperMethod, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cmd, err := NewCommand(cfg, m)
	if err != nil {
		return nil, err
	}
	sig, err := NewSignature(cfg, m)
	if err != nil {
		return nil, err
	}

	factory := cfg.ObjectFactory()
	if factory == nil {
		factory = session.DefaultObjectFactory{}
	}

	mm := &MapperMethod{
		method:    m,
		command:   cmd,
		signature: sig,
		factory:   factory,
		executor:  o.executor,
	}
	if err := mm.validate(); err != nil {
		return nil, err
	}

	slog.Debug("mapper method bound",
		"method", m.FullName(),
		"statement", cmd.Name,
		"kind", cmd.Kind,
		"shape", sig.Shape,
		"future", sig.Future,
	)
	return mm, nil
}

// validate rejects result types that could never be produced for the
// command kind.
func (mm *MapperMethod) validate() error {
	sig := mm.signature
	switch {
	case mm.command.Kind.IsMutation():
		if !isRowCountType(sig.DeclaredType) {
			return mm.fail(ErrCodeUnsupportedMutationReturnType,
				"mapper method '%s' has an unsupported return type: %s", mm.command.Name, sig.DeclaredType)
		}
	case sig.Future && mm.command.Kind == session.KindFlush:
		return mm.fail(ErrCodeUnsupportedFutureShape, "flush methods cannot return a future")
	case mm.command.Kind == session.KindFlush && !isFlushResultType(sig.DeclaredType):
		return mm.fail(ErrCodeResultTypeMismatch,
			"flush method '%s' cannot return %s", mm.method.FullName(), sig.DeclaredType)
	case sig.Future && sig.Shape == ShapeScalar:
	case sig.Future && sig.Shape == ShapeMany && (sig.Target == TargetNative || sig.Target == TargetSlice):
	case sig.Future:
		return mm.fail(ErrCodeUnsupportedFutureShape,
			"futures support single rows and plain lists, not %s (%s)", sig.Shape, sig.Target)
	}
	return nil
}

// Command returns the resolved statement.
func (mm *MapperMethod) Command() Command {
	return mm.command
}

// Signature returns the analyzed signature.
func (mm *MapperMethod) Signature() *Signature {
	return mm.signature
}

// Method returns the method description.
func (mm *MapperMethod) Method() Method {
	return mm.method
}

// Execute runs one call of the method with args (one entry per parameter).
// The result has the method's declared type, or is nil.
func (mm *MapperMethod) Execute(ctx context.Context, sess session.Session, args []any) (any, error) {
	var (
		result any
		err    error
	)

	sig := mm.signature
	name := mm.command.Name

	// nil args stands for a call without arguments
	if args != nil && len(args) != sig.Arity() {
		return nil, mm.fail(ErrCodeInvalidMethod, "mapper method '%s' takes %d arguments, got %d",
			mm.method.FullName(), sig.Arity(), len(args))
	}

	switch mm.command.Kind {
	case session.KindInsert:
		result, err = mm.rowCountResult(sess.Insert(ctx, name, sig.ConvertArgs(args)))
	case session.KindUpdate:
		result, err = mm.rowCountResult(sess.Update(ctx, name, sig.ConvertArgs(args)))
	case session.KindDelete:
		result, err = mm.rowCountResult(sess.Delete(ctx, name, sig.ConvertArgs(args)))

	case session.KindSelect:
		switch {
		case sig.ReturnsVoid() && sig.HasHandler():
			err = mm.executeWithHandler(ctx, sess, args)
		case sig.Shape == ShapeMany && sig.Future:
			result, err = mm.submit(ctx, func(ctx context.Context) (any, error) {
				return mm.executeForMany(ctx, sess, args)
			})
		case sig.Shape == ShapeMany:
			result, err = mm.executeForMany(ctx, sess, args)
		case sig.Shape == ShapeMap:
			result, err = mm.executeForMap(ctx, sess, args)
		case sig.Shape == ShapeCursor:
			result, err = mm.executeForCursor(ctx, sess, args)
		case sig.Future:
			param := sig.ConvertArgs(args)
			result, err = mm.submit(ctx, func(ctx context.Context) (any, error) {
				return mm.executeForOne(ctx, sess, param)
			})
		default:
			result, err = mm.executeForOne(ctx, sess, sig.ConvertArgs(args))
		}

	case session.KindFlush:
		result, err = mm.flushResult(sess.FlushStatements(ctx))

	default:
		return nil, mm.fail(ErrCodeUnsupportedOperationKind, "unknown execution method for: %s", name)
	}

	if err != nil {
		return nil, err
	}
	if err := mm.checkNull(result, sig.DeclaredType); err != nil {
		return nil, err
	}
	return result, nil
}

func (mm *MapperMethod) rowCountResult(n int64, err error) (any, error) {
	if err != nil {
		return nil, mm.engineError(err)
	}
	return rowCount(n, mm.signature.DeclaredType), nil
}

func (mm *MapperMethod) executeWithHandler(ctx context.Context, sess session.Session, args []any) error {
	stmt, err := sess.Configuration().Statement(mm.command.Name)
	if err != nil {
		return mm.engineError(err)
	}
	if !stmt.HasResultMapping() {
		return mm.fail(ErrCodeMissingResultMapping,
			"method %s needs a resultType on its statement so a row handler can be used as a parameter", mm.command.Name)
	}

	sig := mm.signature
	param := sig.ConvertArgs(args)
	if err := sess.Select(ctx, mm.command.Name, param, sig.Bounds(args), sig.Handler(args)); err != nil {
		return mm.engineError(err)
	}
	return nil
}

func (mm *MapperMethod) executeForMany(ctx context.Context, sess session.Session, args []any) (any, error) {
	sig := mm.signature
	param := sig.ConvertArgs(args)
	list, err := sess.SelectList(ctx, mm.command.Name, param, sig.Bounds(args))
	if err != nil {
		return nil, mm.engineError(err)
	}

	t := sig.EffectiveType
	switch sig.Target {
	case TargetNative:
		return list, nil

	case TargetSlice:
		out, err := coerceSlice(reflect.ValueOf(list), t)
		if err != nil {
			return nil, mm.mismatch(err)
		}
		return out.Interface(), nil

	case TargetPage:
		req, ok := page.FindRequest(args)
		if !ok {
			return nil, mm.fail(ErrCodeMissingPagingArgument, "method %s needs a page.Request parameter", mm.command.Name)
		}
		elem, _ := page.ElemType(t)
		content, err := coerceSlice(reflect.ValueOf(list), reflect.SliceOf(elem))
		if err != nil {
			return nil, mm.mismatch(err)
		}
		p, err := page.Build(t, content, req)
		if err != nil {
			return nil, mm.mismatch(err)
		}
		return p, nil

	case TargetCollection:
		coll, err := mm.factory.Create(t)
		if err != nil {
			return nil, mm.mismatch(err)
		}
		if err := mm.factory.AddAll(coll, list); err != nil {
			return nil, mm.mismatch(err)
		}
		return coll.Interface(), nil
	}
	return nil, mm.fail(ErrCodeResultTypeMismatch, "no list conversion for %s", t)
}

func (mm *MapperMethod) executeForMap(ctx context.Context, sess session.Session, args []any) (any, error) {
	sig := mm.signature
	param := sig.ConvertArgs(args)
	m, err := sess.SelectMap(ctx, mm.command.Name, param, sig.MapKey, sig.Bounds(args))
	if err != nil {
		return nil, mm.engineError(err)
	}
	if m == nil {
		return nil, nil
	}
	out, err := coerce(m, sig.EffectiveType)
	if err != nil {
		return nil, mm.mismatch(err)
	}
	return out, nil
}

func (mm *MapperMethod) executeForCursor(ctx context.Context, sess session.Session, args []any) (any, error) {
	sig := mm.signature
	param := sig.ConvertArgs(args)
	cur, err := sess.SelectCursor(ctx, mm.command.Name, param, sig.Bounds(args))
	if err != nil {
		return nil, mm.engineError(err)
	}
	if cur == nil {
		return nil, nil
	}
	return cur, nil
}

func (mm *MapperMethod) executeForOne(ctx context.Context, sess session.Session, param any) (any, error) {
	raw, err := sess.SelectOne(ctx, mm.command.Name, param)
	if err != nil {
		return nil, mm.engineError(err)
	}
	out, err := coerce(raw, mm.signature.EffectiveType)
	if err != nil {
		return nil, mm.mismatch(err)
	}
	if err := mm.checkNull(out, mm.signature.EffectiveType); err != nil {
		return nil, err
	}
	return out, nil
}

func (mm *MapperMethod) flushResult(results []session.BatchResult, err error) (any, error) {
	if err != nil {
		return nil, mm.engineError(err)
	}
	if results == nil {
		return nil, nil
	}
	out, err := coerce(results, mm.signature.DeclaredType)
	if err != nil {
		return nil, mm.mismatch(err)
	}
	return out, nil
}

// submit hands work to the executor and returns the future. The work runs
// on a context detached from ctx's cancellation; waiting is bounded by the
// context given to Future.Get.
func (mm *MapperMethod) submit(ctx context.Context, work func(ctx context.Context) (any, error)) (any, error) {
	exec := mm.executor
	if exec == nil {
		exec = async.Default()
	}
	detached := context.WithoutCancel(ctx)
	fut, err := async.Submit(exec, mm.signature.DeclaredType, func() (any, error) {
		out, err := work(detached)
		if err != nil {
			slog.Error("async mapper call failed", "method", mm.method.FullName(), "error", err)
		}
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", mm.method.FullName(), err)
	}
	return fut, nil
}

func (mm *MapperMethod) checkNull(result any, t reflect.Type) error {
	if result == nil && isPrimitive(t) {
		return mm.fail(ErrCodeNullPrimitiveReturn,
			"mapper method '%s' attempted to return null from a method with a primitive return type (%s)", mm.command.Name, t)
	}
	return nil
}

func (mm *MapperMethod) fail(code ErrorCode, format string, args ...any) *BindingError {
	return newError(code, format, args...).withMethod(mm.method).withStatement(mm.command.Name)
}

func (mm *MapperMethod) mismatch(err error) *BindingError {
	return mm.fail(ErrCodeResultTypeMismatch, "result does not fit %s", mm.signature.DeclaredType).wrapping(err)
}

func (mm *MapperMethod) engineError(err error) error {
	return fmt.Errorf("execute %s: %w", mm.command.Name, err)
}
