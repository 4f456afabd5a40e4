package configerror

import "fmt"

func newError(reason string, v ...interface{}) *Error {
	if len(v) < 1 {
		return &Error{Reason: reason}
	}
	return &Error{Reason: fmt.Sprintf(reason, v...)}
}
