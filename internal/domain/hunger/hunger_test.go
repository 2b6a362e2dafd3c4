package hunger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateOf_Bands(t *testing.T) {
	cases := []struct {
		v    float64
		want State
	}{
		{0, StateStarving},
		{20, StateStarving},
		{20.0001, StateHungry},
		{40, StateHungry},
		{60, StateFine},
		{60.0001, StateSatisfied},
		{80, StateSatisfied},
		{80.0001, StateFull},
		{100, StateFull},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StateOf(tc.v), "value %v", tc.v)
	}
}

func TestCurrent_Decay(t *testing.T) {
	t0 := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 100.0, Current(100, t0, t0))
	assert.Equal(t, 99.0, Current(100, t0, t0.Add(time.Hour)))
	assert.Equal(t, 95.0, Current(100, t0, t0.Add(5*time.Hour)))
	assert.Equal(t, 35.0, Current(100, t0, t0.Add(65*time.Hour)))
	assert.InDelta(t, 99.5, Current(100, t0, t0.Add(30*time.Minute)), 1e-9)
}

func TestCurrent_FloorsAtZero(t *testing.T) {
	t0 := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, Current(0, t0, t0.Add(time.Hour)))
	assert.Equal(t, 0.0, Current(0, t0, t0.Add(10000*time.Hour)))
	assert.Equal(t, 0.0, Current(50, t0, t0.Add(51*time.Hour)))
}

func TestCurrent_ClampsToMax(t *testing.T) {
	t0 := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	// reloj hacia atrás: no puede superar Max
	assert.Equal(t, Max, Current(100, t0, t0.Add(-3*time.Hour)))
	assert.Equal(t, Max, Current(150, t0, t0))
}

func TestRestore_NeverExceedsMax(t *testing.T) {
	assert.Equal(t, 55.0, Restore(35, 20))
	assert.Equal(t, 100.0, Restore(95, 20))
	assert.Equal(t, 0.0, Restore(0, -5))
}
