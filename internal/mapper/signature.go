package mapper

import (
	"context"
	"reflect"
	"strconv"

	"github.com/roach88/mapperkit/internal/async"
	"github.com/roach88/mapperkit/internal/page"
	"github.com/roach88/mapperkit/internal/session"
)

// Shape is the result shape of a mapper method.
type Shape int

const (
	ShapeVoid Shape = iota
	ShapeScalar
	ShapeMany
	ShapeMap
	ShapeCursor
)

func (s Shape) String() string {
	switch s {
	case ShapeVoid:
		return "void"
	case ShapeScalar:
		return "scalar"
	case ShapeMany:
		return "many"
	case ShapeMap:
		return "map"
	case ShapeCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

// Target is how a list read becomes the declared type of a ShapeMany method.
type Target int

const (
	TargetNone Target = iota
	// TargetNative: the declared type is []any and takes the list unchanged.
	TargetNative
	// TargetSlice: a new slice of the declared element type.
	TargetSlice
	// TargetPage: a page.Page built from the list and the page.Request argument.
	TargetPage
	// TargetCollection: a user collection filled through the ObjectFactory.
	TargetCollection
)

func (t Target) String() string {
	switch t {
	case TargetNative:
		return "native"
	case TargetSlice:
		return "slice"
	case TargetPage:
		return "page"
	case TargetCollection:
		return "collection"
	default:
		return "none"
	}
}

var (
	anySliceType = reflect.TypeFor[[]any]()
	cursorType   = reflect.TypeFor[session.Cursor]()
	contextType  = reflect.TypeFor[context.Context]()
	boundedType  = reflect.TypeFor[session.Bounded]()
	handlerType  = reflect.TypeFor[session.RowHandler]()
)

// Param is an argument position that feeds the statement parameter.
type Param struct {
	Index int
	Name  string
}

// Signature is the precomputed layout of a method's arguments and result.
// Immutable after construction and safe to share.
type Signature struct {
	Shape  Shape
	Target Target

	// DeclaredType is the func's first result type, nil for void.
	DeclaredType reflect.Type
	// EffectiveType is DeclaredType with a future wrapper removed.
	EffectiveType reflect.Type
	// Future is set when DeclaredType is *async.Future[EffectiveType].
	Future bool

	MapKey string

	// PagingIndex, HandlerIndex and ContextIndex are argument positions,
	// -1 when the method has no such parameter.
	PagingIndex  int
	HandlerIndex int
	ContextIndex int

	// Params lists the remaining positions in declaration order.
	Params      []Param
	NamedParams bool

	argc int
}

// NewSignature analyzes m once.
func NewSignature(cfg session.Configuration, m Method) (*Signature, error) {
	s := &Signature{
		PagingIndex:  -1,
		HandlerIndex: -1,
		ContextIndex: -1,
		MapKey:       m.MapKey,
		argc:         m.Func.NumIn(),
	}

	if declared := m.ReturnType(); declared != nil {
		resolver := cfg.TypeResolver()
		if resolver == nil {
			resolver = session.DefaultTypeResolver{}
		}
		s.DeclaredType = resolver.ResolveReturnType(m.Mapper, m.Field, declared)
		s.EffectiveType = s.DeclaredType
		if inner, ok := async.ValueType(s.DeclaredType); ok {
			s.EffectiveType = inner
			s.Future = true
		}
	}

	factory := cfg.ObjectFactory()
	if factory == nil {
		factory = session.DefaultObjectFactory{}
	}
	s.Shape, s.Target = classify(s.EffectiveType, m.MapKey, factory)

	if err := s.scanParams(m); err != nil {
		return nil, err
	}
	return s, nil
}

func classify(t reflect.Type, mapKey string, factory session.ObjectFactory) (Shape, Target) {
	if t == nil {
		return ShapeVoid, TargetNone
	}
	if _, ok := page.ElemType(t); ok {
		return ShapeMany, TargetPage
	}
	if t.Kind() == reflect.Slice {
		if t == anySliceType {
			return ShapeMany, TargetNative
		}
		return ShapeMany, TargetSlice
	}
	if factory.IsCollection(t) {
		return ShapeMany, TargetCollection
	}
	if t == cursorType {
		return ShapeCursor, TargetNone
	}
	if t.Kind() == reflect.Map && mapKey != "" {
		return ShapeMap, TargetNone
	}
	return ShapeScalar, TargetNone
}

func (s *Signature) scanParams(m Method) error {
	for i := 0; i < m.Func.NumIn(); i++ {
		if m.ParamNames[i] != "" {
			s.NamedParams = true
		}
	}

	for i := 0; i < m.Func.NumIn(); i++ {
		in := m.Func.In(i)
		switch {
		case in.Implements(contextType):
			if s.ContextIndex >= 0 {
				return newError(ErrCodeDuplicateSpecialParameter, "%s cannot have multiple context.Context parameters", m.Name).withMethod(m)
			}
			s.ContextIndex = i
		case in.Implements(boundedType):
			if s.PagingIndex >= 0 {
				return newError(ErrCodeDuplicateSpecialParameter, "%s cannot have multiple paging parameters", m.Name).withMethod(m)
			}
			s.PagingIndex = i
		case in.Implements(handlerType):
			if s.HandlerIndex >= 0 {
				return newError(ErrCodeDuplicateSpecialParameter, "%s cannot have multiple row handler parameters", m.Name).withMethod(m)
			}
			s.HandlerIndex = i
		default:
			name := strconv.Itoa(len(s.Params))
			if s.NamedParams && m.ParamNames[i] != "" {
				name = m.ParamNames[i]
			}
			s.Params = append(s.Params, Param{Index: i, Name: name})
		}
	}
	return nil
}

// ReturnsVoid reports whether the method has no result value.
func (s *Signature) ReturnsVoid() bool {
	return s.DeclaredType == nil
}

// HasBounds reports whether the method declares a paging parameter.
func (s *Signature) HasBounds() bool {
	return s.PagingIndex >= 0
}

// HasHandler reports whether the method declares a row handler parameter.
func (s *Signature) HasHandler() bool {
	return s.HandlerIndex >= 0
}

// Bounds returns the paging argument's bounds, or the default bounds when
// the method has none or the argument is nil.
func (s *Signature) Bounds(args []any) session.RowBounds {
	if s.PagingIndex < 0 || s.PagingIndex >= len(args) {
		return session.DefaultRowBounds
	}
	if b, ok := args[s.PagingIndex].(session.Bounded); ok && !isNilValue(b) {
		return b.RowBounds()
	}
	return session.DefaultRowBounds
}

// Handler returns the row handler argument, or nil.
func (s *Signature) Handler(args []any) session.RowHandler {
	if s.HandlerIndex < 0 || s.HandlerIndex >= len(args) {
		return nil
	}
	h, _ := args[s.HandlerIndex].(session.RowHandler)
	return h
}

// Context returns the context argument, or context.Background().
func (s *Signature) Context(args []any) context.Context {
	if s.ContextIndex >= 0 && s.ContextIndex < len(args) {
		if ctx, ok := args[s.ContextIndex].(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// ConvertArgs builds the statement parameter from the call arguments:
// nil without eligible arguments, the bare argument for a single unnamed
// one, and a *ParamMap otherwise.
func (s *Signature) ConvertArgs(args []any) any {
	switch {
	case args == nil || len(s.Params) == 0:
		return nil
	case !s.NamedParams && len(s.Params) == 1:
		return args[s.Params[0].Index]
	}

	pm := &ParamMap{entries: make([]paramEntry, 0, len(s.Params))}
	for i, p := range s.Params {
		pm.add(p.Name, i, args[p.Index])
	}
	return pm
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Arity returns the method's parameter count.
func (s *Signature) Arity() int {
	return s.argc
}
