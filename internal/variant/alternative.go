package variant

import "reflect"

// Destroyer is implemented by values that hold something to release when the
// container owning them is destroyed.
type Destroyer interface {
	Destroy()
}

// Inline constructs, reads and destroys a T living in an inline slot.
type Inline[T any] struct{}

// Construct moves v into the slot at. The slot must not hold a live T.
func (Inline[T]) Construct(at *T, v T) {
	*at = v
}

// Get returns the T living at at. The slot must hold a live T.
func (Inline[T]) Get(at *T) *T {
	return at
}

// Destroy runs the destructor of the T living at at and clears the slot.
func (Inline[T]) Destroy(at *T) {
	destroy(at)
	var zero T
	*at = zero
}

// Boxed constructs, reads and destroys a T living behind a pointer word.
type Boxed[T any] struct{}

// Construct moves v into the slot at. The slot must not hold a live T.
func (Boxed[T]) Construct(at **T, v T) {
	*at = &v
}

// Get returns the T living at at. The slot must hold a live T.
func (Boxed[T]) Get(at **T) *T {
	return *at
}

// Live reports whether the slot at holds a T.
func (Boxed[T]) Live(at **T) bool {
	return *at != nil
}

// Destroy runs the destructor of the T living at at and clears the slot.
func (Boxed[T]) Destroy(at **T) {
	destroy(*at)
	*at = nil
}

func destroy[T any](v *T) {
	if d, ok := any(v).(Destroyer); ok {
		d.Destroy()
		return
	}
	// T itself may be a pointer or an interface carrying the method. A nil
	// one has nothing to release.
	if d, ok := any(*v).(Destroyer); ok && !isNil(d) {
		d.Destroy()
	}
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
