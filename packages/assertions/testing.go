package assertions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testReporter struct {
	t testing.TB
}

// T returns a Reporter that fails t through testify. A failure stops the test
// with t.FailNow.
func T(t testing.TB) Reporter {
	return testReporter{t: t}
}

func (r testReporter) Pass() {}

func (r testReporter) Fail(f *Failure) {
	r.t.Helper()
	require.Fail(r.t, f.Message, "assertion kind: %s", f.Kind)
}
