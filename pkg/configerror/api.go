// Package configerror holds the error returned for missing or invalid
// operator inputs (flags, configuration, environment).
package configerror

// Error is returned for missing or invalid inputs. It is detected before any
// network call or tool invocation and is not worth retrying.
type Error struct {
	Reason string
}

// New returns an *Error with a formatted reason.
func New(reason string, v ...interface{}) *Error {
	return newError(reason, v...)
}

func (e *Error) Error() string {
	return e.Reason
}
