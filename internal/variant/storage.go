// Package variant holds the low-level pieces the two-alternative containers
// are built from: a storage layout and one accessor per alternative.
package variant

// Storage is a fixed layout able to hold one S or one F.
//
// S is kept inline. F is kept behind a single pointer word, so the layout is
// never wider than S plus one word whichever alternative is live. Both slots
// stay typed so the garbage collector sees any pointer they hold.
//
// Storage never constructs, reads or destroys values on its own, that is left
// to the accessors.
type Storage[S, F any] struct {
	inline S
	boxed  *F
}

// Inline returns the address of the inline slot.
func (s *Storage[S, F]) Inline() *S {
	return &s.inline
}

// Boxed returns the address of the boxed slot.
func (s *Storage[S, F]) Boxed() **F {
	return &s.boxed
}
