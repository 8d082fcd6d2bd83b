package mapper

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestDescribeUserMapper(t *testing.T) {
	r := NewRegistry(userConfig())

	var b strings.Builder
	for _, f := range reflect.VisibleFields(userMapperType) {
		if f.Type.Kind() != reflect.Func {
			continue
		}
		mm, err := r.Method(userMapperType, f.Index...)
		require.NoError(t, err)
		b.WriteString(mm.String())
		b.WriteByte('\n')
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "user_mapper", []byte(b.String()))
}
