package mapper

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderMapper struct {
	Get func(id int64) (map[string]any, error)
}

func (orderMapper) Namespace() string { return "orders" }

type pointerNamespaced struct{}

func (*pointerNamespaced) Namespace() string { return "ptr" }

func TestNamespace(t *testing.T) {
	assert.Equal(t, "mapper.UserMapper", Namespace(userMapperType))
	assert.Equal(t, "mapper.CrudMapper", Namespace(reflect.TypeFor[CrudMapper[User]]()))
	assert.Equal(t, "orders", Namespace(reflect.TypeFor[orderMapper]()))
	assert.Equal(t, "ptr", Namespace(reflect.TypeFor[pointerNamespaced]()))
}

func TestNewMethod(t *testing.T) {
	m := methodDesc(t, userMapperType, "Search")

	assert.Equal(t, "Search", m.Name)
	assert.Equal(t, []string{"name", "status"}, m.ParamNames)
	assert.Equal(t, "mapper.UserMapper.Search", m.FullName())
	assert.False(t, m.Inherited())
	assert.Equal(t, reflect.TypeFor[[]User](), m.ReturnType())
}

func TestNewMethodInherited(t *testing.T) {
	m := methodDesc(t, userMapperType, "FindAll")

	assert.True(t, m.Inherited())
	assert.Equal(t, reflect.TypeFor[CrudMapper[User]](), m.Declaring)
	assert.Equal(t, "mapper.UserMapper.FindAll", m.FullName())
}

func TestNewMethodTags(t *testing.T) {
	type tagged struct {
		Renamed func(a, b, c int) error       `mapper:"name=FindOne" param:"a,_"`
		Flush   func() error                  `mapper:"flush"`
		ByKey   func() (map[string]int, error) `mapkey:"key"`
	}
	mt := reflect.TypeFor[tagged]()

	renamed := methodDesc(t, mt, "Renamed")
	assert.Equal(t, "FindOne", renamed.Name)
	assert.Equal(t, []string{"a", "", ""}, renamed.ParamNames)
	assert.Nil(t, renamed.ReturnType())

	assert.True(t, methodDesc(t, mt, "Flush").Flush)
	assert.Equal(t, "key", methodDesc(t, mt, "ByKey").MapKey)
}

func TestNewMethodInvalid(t *testing.T) {
	type invalid struct {
		NotFunc  int
		Variadic func(ids ...int) error
		NoError  func() int
		TooMany  func() (int, int, error)
		Params   func(a int) error `param:"a,b"`
		BadTag   func() error      `mapper:"async"`
	}
	mt := reflect.TypeFor[invalid]()

	tests := []struct {
		field string
		msg   string
	}{
		{"NotFunc", "field NotFunc is a int, not a func"},
		{"Variadic", "variadic methods are not supported"},
		{"NoError", "method must return error or (T, error)"},
		{"TooMany", "method must return error or (T, error)"},
		{"Params", "param tag names 2 parameters, method has 1"},
		{"BadTag", `unknown mapper tag option "async"`},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := mt.FieldByName(tt.field)
			require.True(t, ok)

			_, err := NewMethod(mt, mt, f)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrCodeInvalidMethod))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
