package models

import "fmt"

// ValidationError rejects a proposed session or hand tag that violates a
// record invariant. It is reported to the triggering caller and never
// partially applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failed snapshot read or write. Reads degrade to an
// empty collection at the call site; writes are surfaced to the caller.
type PersistenceError struct {
	Op  string // "save" or "load"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
