package backend

import "fmt"

// StatusError is returned when the backend answered with a non-2xx status.
// Code and Message carry the parsed error body when one was present.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

// TransportError is returned when the backend was unreachable: DNS failure,
// connection refused, or timeout. It never carries an HTTP status.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
