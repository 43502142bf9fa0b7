package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertAllClose checks |want[i]-got[i]| <= atol + rtol*|want[i]| for every
// element, the way numeric test suites usually compare arrays.
func AssertAllClose(t *testing.T, want, got []float64, rtol, atol float64, name string) {
	t.Helper()
	require.Len(t, got, len(want), "%s: length mismatch", name)
	for i := range want {
		if diff := math.Abs(want[i] - got[i]); diff > atol+rtol*math.Abs(want[i]) {
			assert.Failf(t, "values differ", "%s[%d]: want %g, got %g (diff %g)", name, i, want[i], got[i], diff)
			return
		}
	}
}
