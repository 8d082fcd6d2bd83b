// Package config holds the statement registry that mapper methods bind to.
//
// Statements come from YAML files or CUE packages:
//
//	# users.yaml
//	namespace: store.UserMapper
//	statements:
//	  - id: FindByStatus
//	    kind: select
//	    resultType: User
//	    sql: SELECT id, name, status FROM users WHERE status = #{status}
//
//	// users.cue
//	mappers: "store.UserMapper": FindByStatus: {
//		kind:       "select"
//		resultType: "User"
//		sql:        "SELECT id, name, status FROM users WHERE status = #{status}"
//	}
//
// Result type names resolve against types registered with RegisterType
// plus the builtin aliases map, any, string, int, int64, float64 and bool.
// Register types before loading files that name them.
//
// Statement ids are NFC normalized so lookups do not depend on how a file
// encoded a name.
package config
