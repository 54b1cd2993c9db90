package hub

import "fmt"

// ProtocolError marks a malformed inbound message (bad JSON, missing
// required fields). The message is dropped; the connection stays open.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "protocol: " + e.Reason }

// StateError marks an operation referencing state that does not exist
// (chat before join, trade to an unknown target). Logged, never fatal.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return "state: " + e.Reason }

// DeliveryError marks a failed send to a single connection. During a
// broadcast it feeds the pruning path; on a targeted send it is only
// reported to the caller.
type DeliveryError struct {
	ConnID string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s: %v", e.ConnID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
