package mapper

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mapperkit/internal/async"
	"github.com/roach88/mapperkit/internal/page"
	"github.com/roach88/mapperkit/internal/session"
	"github.com/roach88/mapperkit/internal/testutil"
)

type User struct {
	ID     int64
	Name   string
	Status string
}

type UserList struct {
	users []User
}

func (l *UserList) AddAll(items []any) error {
	for _, it := range items {
		l.users = append(l.users, it.(User))
	}
	return nil
}

type CrudMapper[T any] struct {
	FindAll func() ([]T, error)
	Count   func() (int64, error)
}

type UserMapper struct {
	CrudMapper[User]

	FindByID     func(id int64) (User, error)
	FindByStatus func(status string, p page.Request) (page.Page[User], error) `param:"status"`
	FindNames    func(status string, b session.RowBounds) ([]string, error)
	Search       func(name, status string) ([]User, error) `param:"name,status"`
	ByID         func() (map[int64]User, error)               `mapkey:"id"`
	Stream       func(status string) (session.Cursor, error)
	Each         func(ctx context.Context, status string, h session.RowHandler) error
	Team         func() (UserList, error)
	Raw          func() ([]any, error)
	FindAsync    func(id int64) (*async.Future[User], error)
	ListAsync    func() (*async.Future[[]User], error)
	Insert       func(u User) (int, error)
	Update       func(u User) (bool, error)
	Purge        func() (int64, error)
	Delete       func(id int64) error
	Flush        func() ([]session.BatchResult, error) `mapper:"flush"`
}

var userMapperType = reflect.TypeFor[UserMapper]()

func userConfig() *testutil.Config {
	cfg := testutil.NewConfig(
		testutil.Mapped("mapper.CrudMapper.FindAll", reflect.TypeFor[User]()),
		testutil.Stmt("mapper.CrudMapper.Count", session.KindSelect),
		testutil.Stmt("mapper.UserMapper.Insert", session.KindInsert),
		testutil.Stmt("mapper.UserMapper.Update", session.KindUpdate),
		testutil.Stmt("mapper.UserMapper.Purge", session.KindDelete),
		testutil.Stmt("mapper.UserMapper.Delete", session.KindDelete),
		testutil.Mapped("mapper.UserMapper.Each", reflect.TypeFor[User]()),
	)
	for _, name := range []string{
		"FindByID", "FindByStatus", "FindNames", "Search", "ByID",
		"Stream", "Team", "Raw", "FindAsync", "ListAsync",
	} {
		cfg.Add(testutil.Mapped("mapper.UserMapper."+name, reflect.TypeFor[User]()))
	}
	return cfg
}

func buildMethod(cfg session.Configuration, mapperType reflect.Type, name string, opts ...Option) (*MapperMethod, error) {
	f, ok := mapperType.FieldByName(name)
	if !ok {
		panic("no field " + name + " in " + mapperType.String())
	}
	return NewRegistry(cfg, opts...).Method(mapperType, f.Index...)
}

func methodOf(t *testing.T, cfg session.Configuration, mapperType reflect.Type, name string, opts ...Option) *MapperMethod {
	t.Helper()
	mm, err := buildMethod(cfg, mapperType, name, opts...)
	require.NoError(t, err)
	return mm
}

func methodDesc(t *testing.T, mapperType reflect.Type, name string) Method {
	t.Helper()
	f, ok := mapperType.FieldByName(name)
	require.True(t, ok)
	declaring := mapperType
	for _, idx := range f.Index[:len(f.Index)-1] {
		declaring = declaring.Field(idx).Type
	}
	m, err := NewMethod(mapperType, declaring, f)
	require.NoError(t, err)
	return m
}
