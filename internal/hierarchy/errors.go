package hierarchy

import "fmt"

// InvariantError reports a mutation that would violate a hierarchy
// invariant. The mutation is rejected synchronously and never partially
// applied.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ConflictError reports a structural mutation submitted against a stale map
// revision. The caller must re-fetch and decide whether to retry; the
// manager never retries on its own.
type ConflictError struct {
	MapID   string
	Given   uint64
	Current uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("map %q: stale revision %d (current %d)", e.MapID, e.Given, e.Current)
}

// NotFoundError reports a missing map or topic.
type NotFoundError struct {
	Kind string // "map" or "topic"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
