// Package async runs mapper reads off the caller's goroutine.
//
// A mapper method declared to return *Future[T] submits its read to an
// Executor and returns immediately. Pool is the default Executor: a fixed
// set of workers draining an unbounded FIFO queue.
//
// Cancellation and timeouts belong to the waiting side: Future.Get honours
// the context it is given, while the submitted work runs to completion.
package async
