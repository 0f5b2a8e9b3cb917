package expect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Run with -tags expectdebug to exercise these.
func TestPreconditionChecks(t *testing.T) {
	if !debug {
		t.Skip("precondition checks are compiled in with -tags expectdebug only")
	}

	require.PanicsWithValue(t, "expect: Get called on an empty VoidError", func() {
		_ = VoidError{}.Get()
	})
	require.PanicsWithValue(t, "expect: Success called on a failed Expect", func() {
		_ = Err[int](NewVoidError("e")).Success()
	})
	require.PanicsWithValue(t, "expect: Fail called on a successful Expect", func() {
		_ = Ok(1).Fail()
	})
}
