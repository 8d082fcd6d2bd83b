// Package session defines the contracts between mapper dispatch and the
// data-access engine that runs statements.
//
// The engine side is split in two:
//   - Configuration: the statement registry plus the object factory and
//     type resolver used while binding mapper methods
//   - Session: a per-caller handle that executes statements
//
// A Session is not safe for concurrent use by several in-flight operations.
// Configuration values are read-only once built and may be shared.
package session
