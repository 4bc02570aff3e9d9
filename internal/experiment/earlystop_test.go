package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarlyStopper_NeverStopsDuringWarmup(t *testing.T) {
	stopper := newEarlyStopper()
	for iter := 0; iter <= stopWarmup; iter++ {
		assert.False(t, stopper.Record(iter, 100.0), "iter %d", iter)
	}
	assert.Empty(t, stopper.lowest, "the warm-up boundary itself is not checked")
}

func TestEarlyStopper_OnlyChecksOnSchedule(t *testing.T) {
	stopper := newEarlyStopper()
	// Off-schedule iterations never stop, whatever the loss looks like.
	for _, iter := range []int{1001, 1050, 1099, 2001} {
		assert.False(t, stopper.Record(iter, 100.0), "iter %d", iter)
	}
	assert.Empty(t, stopper.lowest, "off-schedule losses are not recorded")
}

func TestEarlyStopper_StopsOnPlateau(t *testing.T) {
	stopper := newEarlyStopper()

	// Four checks fill the window, then five consecutive non-improving
	// checks exceed the patience.
	stoppedAt := -1
	for iter := stopWarmup; iter <= stopWarmup+2000; iter += checkEvery {
		if stopper.Record(iter, 1.0) {
			stoppedAt = iter
			break
		}
	}

	// First check is at 1100; window fills at 1100..1400; streak runs
	// 1500..1900.
	assert.Equal(t, stopWarmup+(1+lowestWindow+stopPatience)*checkEvery, stoppedAt)
}

func TestEarlyStopper_ImprovementResetsStreak(t *testing.T) {
	stopper := newEarlyStopper()

	losses := map[int]float32{
		1100: 1.0, 1200: 1.0, 1300: 1.0, 1400: 1.0, // fill the window
		1500: 2.0, 1600: 2.0, 1700: 2.0, 1800: 2.0, // streak builds to 4
		1900: 0.5, // improvement resets
		2000: 2.0, 2100: 2.0, 2200: 2.0, 2300: 2.0,
	}
	for iter := 1100; iter <= 2300; iter += checkEvery {
		assert.False(t, stopper.Record(iter, losses[iter]), "iter %d", iter)
	}

	// A fifth non-improving check after the reset finally stops.
	assert.True(t, stopper.Record(2400, 2.0))
}

func TestEarlyStopper_BeatingWorstRecordedIsImprovement(t *testing.T) {
	stopper := newEarlyStopper()

	// Window fills with 1, 2, 3, 4. A loss below the worst entry (4) is
	// an improvement even when it sits above the window mean (2.5), so a
	// slowly descending tail must never trigger a stop.
	fill := map[int]float32{1100: 1.0, 1200: 2.0, 1300: 3.0, 1400: 4.0}
	for iter := 1100; iter <= 1400; iter += checkEvery {
		assert.False(t, stopper.Record(iter, fill[iter]))
	}

	tail := []float32{3.9, 3.5, 3.4, 3.3, 3.2, 3.1}
	for i, loss := range tail {
		iter := 1500 + i*checkEvery
		assert.False(t, stopper.Record(iter, loss), "iter %d loss %v", iter, loss)
	}

	assert.Equal(t, []float32{1.0, 2.0, 3.0, 3.1}, stopper.lowest)
	assert.Zero(t, stopper.streak)
}

func TestEarlyStopper_DecreasingLossNeverStops(t *testing.T) {
	stopper := newEarlyStopper()

	loss := float32(10.0)
	for iter := stopWarmup; iter <= stopWarmup+5000; iter += checkEvery {
		assert.False(t, stopper.Record(iter, loss), "iter %d", iter)
		loss *= 0.9
	}
}
