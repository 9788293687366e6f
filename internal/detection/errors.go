package detection

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable code identifying why a job failed.
type ErrorKind string

const (
	CouldNotOpenDatafile ErrorKind = "MPF_COULD_NOT_OPEN_DATAFILE"
	CouldNotReadDatafile ErrorKind = "MPF_COULD_NOT_READ_DATAFILE"
	UnsupportedDataType  ErrorKind = "MPF_UNSUPPORTED_DATA_TYPE"
	InvalidProperty      ErrorKind = "MPF_INVALID_PROPERTY"
	DetectionFailed      ErrorKind = "MPF_DETECTION_FAILED"
)

// Error is a job failure carrying a stable kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
