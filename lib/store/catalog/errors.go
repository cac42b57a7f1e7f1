package catalog

import "fmt"

// UnknownTableError reports a table missing from a strict catalog.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("catalog: unknown table %q", e.Table)
}
