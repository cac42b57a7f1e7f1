package mongoql

import "fmt"

// PermissionError reports a statement blocked by the capability set.
type PermissionError struct {
	Capability Capability
}

func (e *PermissionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("operation requires the %q capability", e.Capability)
}

// DangerousOperationError blocks write statements that would touch every
// document in a collection.
type DangerousOperationError struct {
	Operation string
}

func (e *DangerousOperationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("refusing to translate %s without a WHERE clause; add a WHERE clause to limit affected documents", e.Operation)
}

// AmbiguousTranslationError reports a SQL construct that has no faithful
// document-store equivalent. The engine fails closed instead of guessing.
type AmbiguousTranslationError struct {
	Construct string
	Reason    string
}

func (e *AmbiguousTranslationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("cannot translate %s", e.Construct)
	}
	return fmt.Sprintf("cannot translate %s: %s", e.Construct, e.Reason)
}
