package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapperkit/internal/async"
	"github.com/roach88/mapperkit/internal/config"
	"github.com/roach88/mapperkit/internal/mapper"
	"github.com/roach88/mapperkit/internal/page"
	"github.com/roach88/mapperkit/internal/session"
)

type UserMapper struct {
	Insert        func(u user) (bool, error)
	SetStatus     func(id int64, status string) (int, error) `param:"id,status"`
	DeleteAll     func() (int64, error)
	FindByID      func(id int64) (*user, error)
	FindByStatus  func(status string, p page.Request) (page.Page[user], error) `param:"status"`
	FindAll       func(ctx context.Context, b session.RowBounds) ([]user, error)
	CountByStatus func(status string) (*async.Future[int64], error)
	Rows          func() (session.Cursor, error)
}

func TestMapperOverStore(t *testing.T) {
	s, cfg := newTestStore(t)
	sess := s.Session(cfg)
	defer sess.Close()

	var m UserMapper
	require.NoError(t, mapper.NewRegistry(cfg).Bind(&m, sess))

	for _, u := range []user{ann, bob, cat, dan} {
		ok, err := m.Insert(u)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	p, err := m.FindByStatus("active", page.Request{Offset: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []user{ann, bob}, p.Content)
	assert.Equal(t, page.UnknownTotal, p.Total)

	last, err := m.FindByStatus("active", p.Request().Next())
	require.NoError(t, err)
	assert.Equal(t, []user{dan}, last.Content)
	assert.Equal(t, int64(3), last.Total)
	assert.False(t, last.HasNext())

	n, err := m.SetStatus(3, "active")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, err := m.FindByID(3)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "active", u.Status)

	missing, err := m.FindByID(99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := m.FindAll(context.Background(), session.RowBounds{Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []user{{ID: 3, Name: "cat", Status: "active"}, dan}, all)

	count, err := m.CountByStatus("active")
	require.NoError(t, err)
	total, err := count.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	cur, err := m.Rows()
	require.NoError(t, err)
	rows := 0
	for cur.Next() {
		rows++
	}
	require.NoError(t, cur.Close())
	assert.Equal(t, 4, rows)

	deleted, err := m.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestMapperBatchFlush(t *testing.T) {
	type batchMapper struct {
		Insert func(u user) (int, error)
		Flush  func() ([]session.BatchResult, error) `mapper:"flush"`
	}
	s, cfg := newTestStore(t)
	sess := s.Session(cfg, WithBatch())
	defer sess.Close()

	require.NoError(t, cfg.Add(config.StatementDef{
		Namespace: "store.batchMapper",
		ID:        "Insert",
		Kind:      "insert",
		SQL:       "INSERT INTO users (id, name, status) VALUES (#{id}, #{name}, #{status})",
	}))

	var m batchMapper
	require.NoError(t, mapper.NewRegistry(cfg).Bind(&m, sess))

	n, err := m.Insert(ann)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	results, err := m.Flush()
	require.NoError(t, err)
	assert.Equal(t, []session.BatchResult{{StatementID: "store.batchMapper.Insert", RowsAffected: 1}}, results)
}
