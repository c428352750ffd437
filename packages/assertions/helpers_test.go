package assertions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireOutcome checks that exactly one outcome was recorded: a pass when
// want is empty, otherwise a failure with the message want.
func requireOutcome(t *testing.T, rec *Recorder, want string) {
	t.Helper()
	results := rec.Results()
	require.Len(t, results, 1, "expected exactly one outcome")
	if want == "" {
		if !results[0].Passed {
			assert.Fail(t, "unexpected failure", results[0].Failure.Message)
		}
		return
	}
	require.False(t, results[0].Passed, "expected a failure")
	assert.Equal(t, want, results[0].Failure.Message)
}

func requireKind(t *testing.T, rec *Recorder, kind Kind) {
	t.Helper()
	last, ok := rec.Last()
	require.True(t, ok)
	require.False(t, last.Passed)
	assert.Equal(t, kind, last.Failure.Kind)
}
