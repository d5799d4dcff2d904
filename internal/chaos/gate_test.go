package chaos

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trials = 10000

func seededSource() Source {
	return rand.New(rand.NewPCG(42, 1))
}

func TestNewGateRejectsOutOfRangeRates(t *testing.T) {
	cases := []struct {
		name     string
		request  int
		response int
	}{
		{"negative request", -1, 0},
		{"negative response", 0, -5},
		{"request over 100", 101, 0},
		{"response over 100", 0, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGate(tc.request, tc.response, nil)
			require.Error(t, err)
		})
	}
}

func TestGateRateZeroNeverDrops(t *testing.T) {
	gate, err := NewGate(0, 0, seededSource())
	require.NoError(t, err)
	for i := 0; i < trials; i++ {
		assert.False(t, gate.DropRequest())
		assert.False(t, gate.DropResponse())
	}
}

func TestGateRate100AlwaysDrops(t *testing.T) {
	gate, err := NewGate(100, 100, seededSource())
	require.NoError(t, err)
	for i := 0; i < trials; i++ {
		assert.True(t, gate.DropRequest())
		assert.True(t, gate.DropResponse())
	}
}

func TestGateObservedFrequency(t *testing.T) {
	for _, rate := range []int{10, 30, 50, 75} {
		gate, err := NewGate(rate, rate, seededSource())
		require.NoError(t, err)

		dropped := 0
		for i := 0; i < trials; i++ {
			if gate.DropRequest() {
				dropped++
			}
		}

		observed := float64(dropped) / float64(trials)
		expected := float64(rate) / 100.0
		assert.LessOrEqualf(t, math.Abs(observed-expected), 0.03,
			"rate %d: observed %.4f", rate, observed)
	}
}

func TestGatePhasesAreIndependent(t *testing.T) {
	gate, err := NewGate(100, 0, seededSource())
	require.NoError(t, err)
	assert.True(t, gate.DropRequest())
	assert.False(t, gate.DropResponse())
}
