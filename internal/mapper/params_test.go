package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParamMap(names ...string) *ParamMap {
	pm := &ParamMap{}
	for i, name := range names {
		pm.add(name, i, name+"-value")
	}
	return pm
}

func TestParamMapNamesAndFallbacks(t *testing.T) {
	pm := newParamMap("name", "status")

	for key, want := range map[string]any{
		"name":   "name-value",
		"param1": "name-value",
		"status": "status-value",
		"param2": "status-value",
	} {
		got, err := pm.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
	assert.Equal(t, []string{"name", "status", "param1", "param2"}, pm.Names())
	assert.Equal(t, 2, pm.Len())
}

func TestParamMapExplicitNameClaimsFallback(t *testing.T) {
	pm := newParamMap("param2", "x")

	v, err := pm.Get("param2")
	require.NoError(t, err)
	assert.Equal(t, "param2-value", v)
	assert.Equal(t, []string{"param2", "x", "param1"}, pm.Names())
}

func TestParamMapLaterNameShadows(t *testing.T) {
	pm := &ParamMap{}
	pm.add("a", 0, 1)
	pm.add("a", 1, 2)

	v, err := pm.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = pm.Get("param1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestParamMapUnknownKey(t *testing.T) {
	pm := newParamMap("a", "b")

	_, err := pm.Get("zz")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeUnknownParameterKey))
	assert.Contains(t, err.Error(), "parameter 'zz' not found. Available parameters are [a, b, param1, param2]")
	assert.False(t, pm.Has("zz"))
	assert.True(t, pm.Has("b"))
}

func TestParamMapNilValueIsPresent(t *testing.T) {
	pm := &ParamMap{}
	pm.add("maybe", 0, nil)

	v, err := pm.Get("maybe")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParamMapMap(t *testing.T) {
	pm := newParamMap("id")
	assert.Equal(t, map[string]any{"id": "id-value", "param1": "id-value"}, pm.Map())
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "param1", FallbackName(0))
	assert.Equal(t, "param10", FallbackName(9))
}
