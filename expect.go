// Package expect provides Expect, a value that holds either the result of a
// computation or a description of why it failed, and VoidError, its
// counterpart for operations that return nothing.
//
// Both types report failures as data. Reading the alternative that is not
// live (Success on a failed Expect, Fail on a successful one, Get on an empty
// VoidError) is a contract violation the caller is responsible for avoiding;
// it is only checked in builds tagged expectdebug.
//
// Expect is meant to be moved, not shared: one computation produces it, one
// owner reads it and finally destroys it. Copies must not be used once any
// of them has been destroyed.
package expect

import (
	"fmt"

	"github.com/Eugene-Usachev/go-expect/internal/variant"
)

// Destroyer is implemented by success values that hold something to release
// when their Expect is destroyed.
type Destroyer = variant.Destroyer

// destroyed is what the failure slot points at once an Expect has been
// destroyed, so that a second Destroy is a no-op.
var destroyed = NewVoidError("expect: destroyed")

// Expect holds either a T (the success alternative) or a VoidError (the
// failure alternative). Which one is decided at construction and never
// changes.
//
// The zero Expect holds the zero T.
type Expect[T any] struct {
	// Zero-size accessors go first so they add no padding.
	success variant.Inline[T]
	fail    variant.Boxed[VoidError]

	// The boxed slot doubles as the discriminant: it is nil exactly when the
	// success alternative is live.
	storage variant.Storage[T, VoidError]
}

// Ok returns an Expect holding v.
func Ok[T any](v T) Expect[T] {
	var e Expect[T]
	e.success.Construct(e.storage.Inline(), v)
	return e
}

// Err returns an Expect holding the failure f.
func Err[T any](f VoidError) Expect[T] {
	var e Expect[T]
	e.fail.Construct(e.storage.Boxed(), f)
	return e
}

// Errorf returns a failed Expect whose message is formatted with fmt.Sprintf.
func Errorf[T any](format string, args ...any) Expect[T] {
	return Err[T](VoidErrorf(format, args...))
}

// FromResult turns a Go (value, error) pair into an Expect. A non-nil err
// wins over v.
func FromResult[T any](v T, err error) Expect[T] {
	if err != nil {
		return Err[T](FromError(err))
	}
	return Ok(v)
}

// HoldsError reports whether the failure alternative is live.
func (e Expect[T]) HoldsError() bool {
	return e.fail.Live(e.storage.Boxed())
}

// Bool is the boolean conversion of e: true when the success alternative is
// live, which is the opposite of HoldsError.
func (e Expect[T]) Bool() bool {
	return !e.HoldsError()
}

// Success returns the success value. The caller must make sure e does not
// hold an error.
func (e Expect[T]) Success() T {
	assert(!e.HoldsError(), "expect: Success called on a failed Expect")
	return *e.success.Get(e.storage.Inline())
}

// SuccessRef returns the address of the success value held by e, letting the
// owner modify it in place. The same precondition as Success applies.
func (e *Expect[T]) SuccessRef() *T {
	assert(!e.HoldsError(), "expect: SuccessRef called on a failed Expect")
	return e.success.Get(e.storage.Inline())
}

// Fail returns the failure. The caller must make sure e holds an error.
func (e Expect[T]) Fail() VoidError {
	assert(e.HoldsError(), "expect: Fail called on a successful Expect")
	return *e.fail.Get(e.storage.Boxed())
}

// Unwrap converts e to the usual Go (value, error) pair.
func (e Expect[T]) Unwrap() (T, error) {
	if e.HoldsError() {
		var zero T
		return zero, e.Fail().Err()
	}
	return e.Success(), nil
}

// Destroy releases the live alternative: a success value implementing
// Destroyer has its Destroy method called, then the slot is cleared. Only
// the live alternative is touched and repeated calls do nothing.
//
// A destroyed Expect reads as failed.
func (e *Expect[T]) Destroy() {
	boxed := e.storage.Boxed()
	switch {
	case *boxed == &destroyed:
		return
	case e.fail.Live(boxed):
		e.fail.Destroy(boxed)
	default:
		e.success.Destroy(e.storage.Inline())
	}
	*boxed = &destroyed
}

func (e Expect[T]) String() string {
	if e.HoldsError() {
		return "fail(" + e.Fail().String() + ")"
	}
	return fmt.Sprintf("success(%v)", e.Success())
}
