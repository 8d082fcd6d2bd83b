package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", usersYAML)

	out, err := runCLI(t, "describe", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, []string{"ID", "KIND", "RESULT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"store.UserMapper.Insert", "insert", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"store.UserMapper.FindByStatus", "select", "User"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"store.UserMapper.Flush", "flush", "-"}, strings.Fields(lines[6]))
}

func TestDescribeJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.cue", usersCUE)

	out, err := runCLI(t, "--format", "json", "describe", dir)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []StatementInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.ElementsMatch(t, []StatementInfo{
		{ID: "store.UserMapper.FindByStatus", Kind: "select", ResultType: "User"},
		{ID: "store.UserMapper.DeleteAll", Kind: "delete"},
	}, resp.Data)
}

func TestDescribeUnsupportedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.toml", "x = 1")

	out, err := runCLI(t, "describe", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unsupported statement file")
}
