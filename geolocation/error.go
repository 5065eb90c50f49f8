package geolocation

import "fmt"

// ErrorCode mirrors the failure classes a position source can report.
type ErrorCode int

const (
	PermissionDenied ErrorCode = iota + 1
	PositionUnavailable
	Timeout
)

func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("error code %d", int(c))
	}
}

// Error is the only error the provider emits on its "error" event.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Message
}

// Is matches any *Error with the same code, so errors.Is(err, ErrTimeout) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrPermissionDenied    = &Error{Code: PermissionDenied, Message: "User denied Geolocation"}
	ErrPositionUnavailable = &Error{Code: PositionUnavailable, Message: "Position unavailable"}
	ErrTimeout             = &Error{Code: Timeout, Message: "Timeout expired"}
)
