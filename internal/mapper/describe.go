package mapper

import (
	"fmt"
	"reflect"
	"strings"
)

// String renders the method's command and signature on one line.
func (mm *MapperMethod) String() string {
	kind := mm.command.Kind.String()
	stmt := mm.command.Name
	if stmt == "" {
		stmt = "-"
	}
	return fmt.Sprintf("%s statement=%s kind=%s %s", mm.method.Name, stmt, kind, mm.signature)
}

// String renders the signature descriptor.
func (s *Signature) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "shape=%s", s.Shape)
	if s.Shape == ShapeMany {
		fmt.Fprintf(&b, " target=%s", s.Target)
	}
	fmt.Fprintf(&b, " declared=%s", shortType(s.DeclaredType))
	if s.Future {
		fmt.Fprintf(&b, " effective=%s", shortType(s.EffectiveType))
	}
	if s.Shape == ShapeMap {
		fmt.Fprintf(&b, " mapkey=%s", s.MapKey)
	}
	if s.ContextIndex >= 0 {
		fmt.Fprintf(&b, " context=%d", s.ContextIndex)
	}
	if s.PagingIndex >= 0 {
		fmt.Fprintf(&b, " paging=%d", s.PagingIndex)
	}
	if s.HandlerIndex >= 0 {
		fmt.Fprintf(&b, " handler=%d", s.HandlerIndex)
	}

	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = fmt.Sprintf("%d:%s", p.Index, p.Name)
	}
	fmt.Fprintf(&b, " params=[%s]", strings.Join(params, " "))
	if s.NamedParams {
		b.WriteString(" named")
	}
	return b.String()
}

// shortType names t without package paths or type arguments.
func shortType(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + shortType(t.Elem())
	case reflect.Slice:
		if t.Name() == "" {
			return "[]" + shortType(t.Elem())
		}
	case reflect.Map:
		if t.Name() == "" {
			return "map[" + shortType(t.Key()) + "]" + shortType(t.Elem())
		}
	case reflect.Interface:
		if t.Name() == "" && t.NumMethod() == 0 {
			return "any"
		}
	}
	name := t.Name()
	if name == "" {
		return t.String()
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
