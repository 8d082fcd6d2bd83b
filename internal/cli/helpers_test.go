package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mapperkit/internal/store"
)

const usersYAML = `namespace: store.UserMapper
statements:
  - id: Insert
    kind: insert
    sql: INSERT INTO users (id, name, status) VALUES (#{id}, #{name}, #{status})
  - id: SetStatus
    kind: update
    sql: UPDATE users SET status = #{status} WHERE id = #{id}
  - id: Purge
    kind: delete
    sql: DELETE FROM users WHERE status = #{status}
  - id: FindByStatus
    kind: select
    resultType: User
    sql: SELECT id, name, status FROM users WHERE status = #{status} ORDER BY id
  - id: CountAll
    kind: select
    resultType: int64
    sql: SELECT COUNT(*) FROM users
  - id: Flush
    kind: flush
`

const usersCUE = `package statements

mappers: "store.UserMapper": {
	FindByStatus: {
		kind:       "select"
		resultType: "User"
		sql:        "SELECT id, name, status FROM users WHERE status = #{status}"
	}
	DeleteAll: {
		kind: "delete"
		sql:  "DELETE FROM users"
	}
}
`

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// seedDB creates a users table with three rows and returns the db path.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Exec(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, status TEXT NOT NULL)`))
	require.NoError(t, st.Exec(ctx, `INSERT INTO users (id, name, status) VALUES
		(1, 'ada', 'active'),
		(2, 'bob', 'inactive'),
		(3, 'cy', 'active')`))
	return path
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
