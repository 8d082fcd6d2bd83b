// Package mapper binds mapper methods to registered statements and
// dispatches calls to a session.
//
// A mapper is a struct whose exported func fields are data-access methods:
//
//	type UserMapper struct {
//	    CrudMapper[User]
//	    FindByStatus func(ctx context.Context, status string, p page.Request) (page.Page[User], error) `param:"_,status"`
//	    ByID         func(ctx context.Context) (map[int64]User, error)                              `mapkey:"id"`
//	    Flush        func(ctx context.Context) ([]session.BatchResult, error)                        `mapper:"flush"`
//	}
//
// Registry.Bind fills each func field with an adapter around a
// MapperMethod. Binding happens once per mapper type and field:
//
//  1. Command resolves the statement id and its kind.
//  2. Signature classifies the result shape and the parameter layout.
//
// Each call then runs MapperMethod.Execute: the arguments are converted to
// the statement parameter, exactly one session operation is issued (or one
// unit of work is submitted for *async.Future results), and the raw result
// is coerced to the declared type.
//
// Struct tags:
//   - param:"a,_,b" names parameters by position; "_" or empty leaves one unnamed
//   - mapkey:"col" keys a map result by a column or field
//   - mapper:"flush" marks a flush method; mapper:"name=x" overrides the method name
package mapper
