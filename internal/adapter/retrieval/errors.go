package retrieval

import "fmt"

// ErrorKind classifies a failed retrieval call.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
)

// Error is returned by Client.Search.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("retrieval %s error: status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("retrieval %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
