// Package status turns protocol status codes and I/O errors into VoidErrors.
package status

import (
	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/constants"
)

const (
	BadRequest    = "bad request"
	InternalError = "internal error"
	SpaceNotFound = "space not found"
	NotFound      = "not found"
	Unknown       = "unknown error"

	Closed    = "connection closed"
	Truncated = "truncated message"
	Empty     = "empty response"
)

// Describe returns the failure a status code stands for, empty for Done.
func Describe(code uint8) expect.VoidError {
	switch code {
	case constants.Done:
		return expect.VoidError{}
	case constants.BadRequest:
		return expect.NewVoidError(BadRequest)
	case constants.InternalError:
		return expect.NewVoidError(InternalError)
	case constants.SpaceNotFound:
		return expect.NewVoidError(SpaceNotFound)
	case constants.NotFound:
		return expect.NewVoidError(NotFound)
	}
	return expect.VoidErrorf("%s %d", Unknown, code)
}

// IO describes an I/O failure of op, empty when err is nil.
func IO(op string, err error) expect.VoidError {
	if err == nil {
		return expect.VoidError{}
	}
	return expect.VoidErrorf("%s: %v", op, err)
}

// Split separates a response message into its status and its body. The body
// is only meaningful for Done.
func Split(msg []byte) (expect.VoidError, []byte) {
	if len(msg) == 0 {
		return expect.NewVoidError(Empty), nil
	}
	return Describe(msg[0]), msg[1:]
}
