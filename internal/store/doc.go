// Package store is the SQLite engine behind mapper sessions.
//
// A Store owns one database. Sessions run registered statements against it:
//
//   - #{name} placeholders compile to ? arguments
//   - rows map into the statement's result type
//   - row bounds are applied while reading
//   - mutations can be queued and flushed as a batch
//
// # Parameter Resolution
//
// A placeholder name resolves against the statement parameter:
//   - session.ParamSource: Get(name)
//   - map[string]any: the entry for name
//   - struct or pointer to struct: the field tagged db:"name", or the field
//     whose name matches case-insensitively
//   - anything else: the parameter itself, whatever the name
//
// Dotted names ("user.name") resolve the first segment as above and each
// following segment against the value found so far.
//
// # Row Mapping
//
// Struct result types receive columns by db tag, by case-insensitive field
// name, or by field name with underscores removed from the column
// ("user_name" fills UserName). Scalar result types take the first column.
// Statements without a result type, or with map/any, produce
// map[string]any rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The store uses a single connection. A cursor holds it until closed, so
// close cursors before running other statements on the same store.
package store
