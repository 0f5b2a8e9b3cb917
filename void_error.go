package expect

import (
	"errors"
	"fmt"
)

// VoidError is the outcome of an operation that has nothing to return but may
// fail. The zero value means no error.
//
// A VoidError is a value: it is created once, optionally with a message, and
// never changes afterwards.
type VoidError struct {
	message *string
}

// NewVoidError returns a VoidError holding message. An empty message is still
// an error.
func NewVoidError(message string) VoidError {
	return VoidError{message: &message}
}

// VoidErrorf is NewVoidError with fmt.Sprintf formatting.
func VoidErrorf(format string, args ...any) VoidError {
	return NewVoidError(fmt.Sprintf(format, args...))
}

// FromError returns an empty VoidError for a nil err and a VoidError holding
// err.Error() otherwise.
func FromError(err error) VoidError {
	if err == nil {
		return VoidError{}
	}
	return NewVoidError(err.Error())
}

// HoldsError reports whether e describes a failure.
func (e VoidError) HoldsError() bool {
	return e.message != nil
}

// Bool is the boolean conversion of e, equivalent to HoldsError.
func (e VoidError) Bool() bool {
	return e.HoldsError()
}

// Get returns the failure message.
//
// The caller must check HoldsError first; calling Get on an empty VoidError
// is a contract violation.
func (e VoidError) Get() string {
	assert(e.message != nil, "expect: Get called on an empty VoidError")
	return *e.message
}

// Err converts e to a Go error, nil when e is empty.
func (e VoidError) Err() error {
	if e.message == nil {
		return nil
	}
	return errors.New(*e.message)
}

func (e VoidError) String() string {
	if e.message == nil {
		return "<no error>"
	}
	return *e.message
}
