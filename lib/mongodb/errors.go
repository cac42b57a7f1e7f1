package mongodb

// ExecError wraps a failed command against the database.
type ExecError struct {
	Message string
	Err     error
}

func (e *ExecError) Error() string {
	return e.Message
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
