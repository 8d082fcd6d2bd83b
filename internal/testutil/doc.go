// Package testutil provides in-memory stand-ins for the session layer so
// mapper dispatch can be tested without a database.
//
// FakeSession records every engine call and answers from canned results.
// Config is a fixed statement table. InlineExecutor and DeferredExecutor
// control when asynchronous mapper work runs.
package testutil
