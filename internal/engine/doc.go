// Package engine dispatches named frame invocations to the frame executor.
//
// The engine is a thin synchronous layer:
//
//  1. Look up the frame by name (unknown → UNKNOWN_FRAME)
//  2. Check positional argument arity and kinds (mismatch → INVALID_ARGUMENTS)
//  3. Decode args into the frame's request struct and run it on the caller's
//     goroutine, inside the caller's transaction
//  4. Stamp the call with an invocation id and sequence number, record
//     metrics and log the outcome
//
// The engine never begins, commits or rolls back transactions. Callers own
// the transaction boundary and roll back on any returned error.
package engine
