package pipe

import (
	"context"

	"github.com/Eugene-Usachev/go-expect"
)

// Slot hands one response to one waiter.
type Slot struct {
	ch chan expect.Expect[[]byte]
}

func NewSlot() *Slot {
	return &Slot{
		ch: make(chan expect.Expect[[]byte], 1),
	}
}

// Wait blocks until the response arrives or ctx is done.
func (s *Slot) Wait(ctx context.Context) expect.Expect[[]byte] {
	select {
	case res := <-s.ch:
		return res
	case <-ctx.Done():
		return expect.Err[[]byte](expect.FromError(ctx.Err()))
	}
}

// Set delivers res. It must be called exactly once.
func (s *Slot) Set(res expect.Expect[[]byte]) {
	s.ch <- res
}
