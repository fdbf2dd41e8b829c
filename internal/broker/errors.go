package broker

import "fmt"

// ValidationError reports a missing or malformed request field. It is raised
// before any side effect and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PolicyError reports a guard rejection: a blocked command or a path outside
// the project root. It occurs strictly before confirmation.
type PolicyError struct {
	Msg string
}

func (e *PolicyError) Error() string { return e.Msg }

// ExecutionError wraps a host failure while performing a confirmed action,
// such as an unreadable file or an interpreter that could not be started.
type ExecutionError struct {
	Msg string
	Err error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }
