package mapper

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapperkit/internal/session"
	"github.com/roach88/mapperkit/internal/testutil"
)

func TestNewCommandDirect(t *testing.T) {
	cmd, err := NewCommand(userConfig(), methodDesc(t, userMapperType, "FindByID"))
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "mapper.UserMapper.FindByID", Kind: session.KindSelect}, cmd)
}

func TestNewCommandFallsBackToDeclaringType(t *testing.T) {
	cmd, err := NewCommand(userConfig(), methodDesc(t, userMapperType, "Count"))
	require.NoError(t, err)
	assert.Equal(t, "mapper.CrudMapper.Count", cmd.Name)
}

func TestNewCommandPrefersMapperType(t *testing.T) {
	cfg := userConfig()
	cfg.Add(testutil.Stmt("mapper.UserMapper.Count", session.KindSelect))

	cmd, err := NewCommand(cfg, methodDesc(t, userMapperType, "Count"))
	require.NoError(t, err)
	assert.Equal(t, "mapper.UserMapper.Count", cmd.Name)
}

type baseMapper struct {
	Get func() (int, error)
}

type middleMapper struct {
	baseMapper
}

type topMapper struct {
	middleMapper
}

func TestNewCommandSingleFallbackLevel(t *testing.T) {
	m := methodDesc(t, reflect.TypeFor[topMapper](), "Get")
	require.Equal(t, reflect.TypeFor[baseMapper](), m.Declaring)

	cfg := testutil.NewConfig(testutil.Stmt("mapper.middleMapper.Get", session.KindSelect))
	_, err := NewCommand(cfg, m)
	assert.True(t, IsCode(err, ErrCodeUnboundOperation))

	cfg.Add(testutil.Stmt("mapper.baseMapper.Get", session.KindSelect))
	cmd, err := NewCommand(cfg, m)
	require.NoError(t, err)
	assert.Equal(t, "mapper.baseMapper.Get", cmd.Name)
}

func TestNewCommandNotFound(t *testing.T) {
	_, err := NewCommand(testutil.NewConfig(), methodDesc(t, userMapperType, "FindByID"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnboundOperation, CodeOf(err))
	assert.Contains(t, err.Error(), "invalid bound statement (not found): mapper.UserMapper.FindByID")
}

func TestNewCommandFlushWithoutStatement(t *testing.T) {
	cmd, err := NewCommand(userConfig(), methodDesc(t, userMapperType, "Flush"))
	require.NoError(t, err)
	assert.Equal(t, Command{Kind: session.KindFlush}, cmd)
}

func TestNewCommandFlushPrefersStatement(t *testing.T) {
	cfg := userConfig()
	cfg.Add(testutil.Stmt("mapper.UserMapper.Flush", session.KindFlush))

	cmd, err := NewCommand(cfg, methodDesc(t, userMapperType, "Flush"))
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "mapper.UserMapper.Flush", Kind: session.KindFlush}, cmd)
}

func TestNewCommandUnknownKind(t *testing.T) {
	cfg := testutil.NewConfig(testutil.Stmt("mapper.UserMapper.FindByID", session.KindUnknown))

	_, err := NewCommand(cfg, methodDesc(t, userMapperType, "FindByID"))
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeUnsupportedOperationKind))
	assert.Contains(t, err.Error(), "unknown execution method for: mapper.UserMapper.FindByID")

	var be *BindingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "mapper.UserMapper.FindByID", be.Statement)
	assert.Equal(t, "mapper.UserMapper.FindByID", be.Method)
}
