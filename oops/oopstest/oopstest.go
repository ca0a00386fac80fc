package oopstest

import (
	"testing"

	"catalogcrawl/oops"

	"github.com/stretchr/testify/require"
)

// RequireNoError prints the stack of the failing error, which plain require.NoError drops.
func RequireNoError(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		require.Fail(t, "Received unexpected error:\n"+oops.FullString(err), msgAndArgs...)
	}
}
