package async

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Future is the pending result of work submitted to an Executor.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an incomplete future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the result is available.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get waits for the result or for ctx to end.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Complete stores the result. Only the first call has any effect.
func (f *Future[T]) Complete(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

func (f *Future[T]) valueType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (f *Future[T]) init() {
	f.done = make(chan struct{})
}

func (f *Future[T]) completeAny(value any, err error) {
	if err != nil {
		var zero T
		f.Complete(zero, err)
		return
	}
	if value == nil {
		var zero T
		f.Complete(zero, nil)
		return
	}
	v, ok := value.(T)
	if !ok {
		var zero T
		f.Complete(zero, fmt.Errorf("future of %s cannot hold %T", reflect.TypeFor[T](), value))
		return
	}
	f.Complete(v, nil)
}

type awaitable interface {
	valueType() reflect.Type
	init()
	completeAny(value any, err error)
}

var awaitableType = reflect.TypeFor[awaitable]()

// ValueType reports whether t is a *Future instantiation and returns the
// type of value it resolves to.
func ValueType(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Pointer || !t.Implements(awaitableType) {
		return nil, false
	}
	return reflect.Zero(t).Interface().(awaitable).valueType(), true
}

// Submit hands work to exec and returns a new future of type t that
// completes with work's result. t must be a *Future type whose value type
// accepts what work returns. A panic in work completes the future with an
// error.
func Submit(exec Executor, t reflect.Type, work func() (any, error)) (any, error) {
	if _, ok := ValueType(t); !ok {
		return nil, fmt.Errorf("type %s is not a future", t)
	}
	ptr := reflect.New(t.Elem())
	fut := ptr.Interface().(awaitable)
	fut.init()

	err := exec.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				fut.completeAny(nil, fmt.Errorf("async work panicked: %v", r))
			}
		}()
		fut.completeAny(work())
	})
	if err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}
