package remote

import "fmt"

// AuthError is a credential or account problem reported by the backend:
// bad credentials, duplicate account, missing session. It is surfaced as a
// toast and returned to the caller so navigation can be suppressed.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ValidationError is a request the backend rejected as malformed. The input
// layer normally catches these before any call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is any other backend call failure: network errors,
// unexpected statuses, undecodable bodies. Local state stays at
// last-known-good and no retry is attempted.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
