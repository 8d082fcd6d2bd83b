package mapper

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapperkit/internal/page"
	"github.com/roach88/mapperkit/internal/session"
	"github.com/roach88/mapperkit/internal/testutil"
)

func signatureOf(t *testing.T, mapperType reflect.Type, name string) *Signature {
	t.Helper()
	sig, err := NewSignature(testutil.NewConfig(), methodDesc(t, mapperType, name))
	require.NoError(t, err)
	return sig
}

func TestSignatureShapes(t *testing.T) {
	tests := []struct {
		field  string
		shape  Shape
		target Target
	}{
		{"FindAll", ShapeMany, TargetSlice},
		{"Count", ShapeScalar, TargetNone},
		{"FindByID", ShapeScalar, TargetNone},
		{"FindByStatus", ShapeMany, TargetPage},
		{"ByID", ShapeMap, TargetNone},
		{"Stream", ShapeCursor, TargetNone},
		{"Each", ShapeVoid, TargetNone},
		{"Team", ShapeMany, TargetCollection},
		{"Raw", ShapeMany, TargetNative},
		{"FindAsync", ShapeScalar, TargetNone},
		{"ListAsync", ShapeMany, TargetSlice},
		{"Delete", ShapeVoid, TargetNone},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			sig := signatureOf(t, userMapperType, tt.field)
			assert.Equal(t, tt.shape, sig.Shape)
			assert.Equal(t, tt.target, sig.Target)
		})
	}
}

func TestSignatureMapWithoutKeyIsScalar(t *testing.T) {
	type m struct {
		Row func() (map[string]any, error)
	}
	sig := signatureOf(t, reflect.TypeFor[m](), "Row")
	assert.Equal(t, ShapeScalar, sig.Shape)
}

func TestSignatureFuture(t *testing.T) {
	sig := signatureOf(t, userMapperType, "FindAsync")
	assert.True(t, sig.Future)
	assert.Equal(t, reflect.TypeFor[User](), sig.EffectiveType)
	assert.NotEqual(t, sig.DeclaredType, sig.EffectiveType)
}

func TestSignatureSpecialParams(t *testing.T) {
	sig := signatureOf(t, userMapperType, "Each")
	assert.Equal(t, 0, sig.ContextIndex)
	assert.Equal(t, 2, sig.HandlerIndex)
	assert.Equal(t, -1, sig.PagingIndex)
	assert.Equal(t, []Param{{Index: 1, Name: "0"}}, sig.Params)
	assert.True(t, sig.HasHandler())
	assert.False(t, sig.HasBounds())
	assert.True(t, sig.ReturnsVoid())
	assert.Equal(t, 3, sig.Arity())

	paged := signatureOf(t, userMapperType, "FindByStatus")
	assert.Equal(t, 1, paged.PagingIndex)
	assert.Equal(t, []Param{{Index: 0, Name: "status"}}, paged.Params)
	assert.True(t, paged.NamedParams)
}

func TestSignatureDuplicateSpecialParams(t *testing.T) {
	type dup struct {
		Paging   func(a page.Request, b session.RowBounds) ([]User, error)
		Handlers func(a, b session.RowHandler) error
		Contexts func(a, b context.Context) (User, error)
	}
	mt := reflect.TypeFor[dup]()

	for _, field := range []string{"Paging", "Handlers", "Contexts"} {
		t.Run(field, func(t *testing.T) {
			_, err := NewSignature(testutil.NewConfig(), methodDesc(t, mt, field))
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrCodeDuplicateSpecialParameter))
		})
	}
}

func TestConvertArgsNone(t *testing.T) {
	sig := signatureOf(t, userMapperType, "FindAll")
	assert.Nil(t, sig.ConvertArgs(nil))
	assert.Nil(t, sig.ConvertArgs([]any{}))
}

func TestConvertArgsSingleUnnamed(t *testing.T) {
	sig := signatureOf(t, userMapperType, "FindByID")
	assert.Equal(t, int64(7), sig.ConvertArgs([]any{int64(7)}))
}

func TestConvertArgsSingleNamed(t *testing.T) {
	sig := signatureOf(t, userMapperType, "FindByStatus")
	param := sig.ConvertArgs([]any{"active", page.Of(0, 10)})

	pm, ok := param.(*ParamMap)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"status": "active", "param1": "active"}, pm.Map())
}

func TestConvertArgsOrdinalNames(t *testing.T) {
	type m struct {
		Between func(lo, hi int, b session.RowBounds) ([]User, error)
	}
	sig := signatureOf(t, reflect.TypeFor[m](), "Between")

	pm, ok := sig.ConvertArgs([]any{1, 9, session.RowBounds{}}).(*ParamMap)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"0": 1, "1": 9, "param1": 1, "param2": 9}, pm.Map())
}

func TestConvertArgsPartiallyNamed(t *testing.T) {
	type m struct {
		Find func(name string, age int) ([]User, error) `param:"name"`
	}
	sig := signatureOf(t, reflect.TypeFor[m](), "Find")

	pm, ok := sig.ConvertArgs([]any{"ann", 30}).(*ParamMap)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "1", "param1", "param2"}, pm.Names())
}

func TestSignatureBounds(t *testing.T) {
	sig := signatureOf(t, userMapperType, "FindNames")
	assert.Equal(t, session.RowBounds{Offset: 4, Limit: 2}, sig.Bounds([]any{"x", session.RowBounds{Offset: 4, Limit: 2}}))

	noPaging := signatureOf(t, userMapperType, "FindByID")
	assert.Equal(t, session.DefaultRowBounds, noPaging.Bounds([]any{int64(1)}))

	type m struct {
		Ptr func(p *page.Request) ([]User, error)
	}
	ptr := signatureOf(t, reflect.TypeFor[m](), "Ptr")
	assert.Equal(t, 0, ptr.PagingIndex)
	assert.Equal(t, session.DefaultRowBounds, ptr.Bounds([]any{(*page.Request)(nil)}))
	assert.Equal(t, session.RowBounds{Offset: 10, Limit: 5}, ptr.Bounds([]any{&page.Request{Offset: 10, Size: 5}}))
}

func TestSignatureContext(t *testing.T) {
	sig := signatureOf(t, userMapperType, "Each")

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	assert.Equal(t, "v", sig.Context([]any{ctx, "x", nil}).Value(key{}))
	assert.NotNil(t, sig.Context([]any{nil, "x", nil}))

	noCtx := signatureOf(t, userMapperType, "FindByID")
	assert.Equal(t, context.Background(), noCtx.Context([]any{int64(1)}))
}

type stringResolver struct{}

func (stringResolver) ResolveReturnType(_ reflect.Type, f reflect.StructField, declared reflect.Type) reflect.Type {
	if f.Name == "Raw" {
		return reflect.TypeFor[[]string]()
	}
	return declared
}

func TestSignatureUsesTypeResolver(t *testing.T) {
	cfg := testutil.NewConfig()
	cfg.Resolver = stringResolver{}

	sig, err := NewSignature(cfg, methodDesc(t, userMapperType, "Raw"))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[[]string](), sig.DeclaredType)
	assert.Equal(t, TargetSlice, sig.Target)
}
